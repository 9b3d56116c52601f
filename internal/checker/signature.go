package checker

import (
	"fmt"

	"github.com/jward/vigil/internal/model"
)

// CodeSignatureDrift flags a call whose argument count falls outside the
// function's accepted range.
const CodeSignatureDrift = "signature/arg-count"

// CheckSignatureDrift compares call-site argument counts against repo-wide
// function declarations. A same-file definition is preferred over other
// files; beyond that, first match wins. The accepted count range is
// [parameters without defaults, total parameters]; variadic functions accept
// any non-negative count.
func CheckSignatureDrift(bufferRefs []model.Reference, _ []model.Symbol, repoSymbols []model.Symbol, currentFile string) []model.Diagnostic {
	funcs := make(map[string]*model.Symbol)
	for i := range repoSymbols {
		s := &repoSymbols[i]
		if s.Kind != model.SymbolFunction || s.Name == "" {
			continue
		}
		if _, ok := funcs[s.Name]; !ok || s.FilePath == currentFile {
			funcs[s.Name] = s
		}
	}

	var diags []model.Diagnostic
	for _, ref := range bufferRefs {
		if ref.Kind != model.RefCall || ref.ArgCount == nil {
			continue
		}
		fn := funcs[ref.Name]
		if fn == nil {
			continue
		}
		if fn.IsVariadic {
			continue // any count >= 0 is accepted
		}
		required := 0
		for _, p := range fn.Params {
			if !p.HasDefault {
				required++
			}
		}
		total := len(fn.Params)
		got := *ref.ArgCount
		if got >= required && got <= total {
			continue
		}
		expected := fmt.Sprintf("%d", total)
		if required != total {
			expected = fmt.Sprintf("%d to %d", required, total)
		}
		diags = append(diags, model.Diagnostic{
			File:     currentFile,
			Line:     ref.Line,
			Severity: model.SeverityWarning,
			Code:     CodeSignatureDrift,
			Message: fmt.Sprintf("'%s' expects %s argument(s) but %d provided (declared in %s:%d)",
				ref.Name, expected, got, fn.FilePath, fn.Line),
		})
	}
	return diags
}
