package checker

import (
	"fmt"

	"github.com/jward/vigil/internal/model"
)

// CodeArrayBounds flags a literal subscript outside the declared array size.
const CodeArrayBounds = "bounds/array-index"

// CheckArrayBounds verifies literal subscripts against statically declared
// array sizes. Sizes from current-buffer declarations override repo-side
// ones for the same name.
func CheckArrayBounds(bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) []model.Diagnostic {
	type decl struct {
		size int
		file string
		line int
	}
	declByName := make(map[string]decl)
	for _, s := range repoSymbols {
		if s.ArraySize != nil {
			declByName[s.Name] = decl{size: *s.ArraySize, file: s.FilePath, line: s.Line}
		}
	}
	for _, s := range bufferSymbols {
		if s.ArraySize != nil {
			file := s.FilePath
			if file == "" {
				file = currentFile
			}
			declByName[s.Name] = decl{size: *s.ArraySize, file: file, line: s.Line}
		}
	}

	var diags []model.Diagnostic
	for _, ref := range bufferRefs {
		if ref.Kind != model.RefArrayAccess || ref.IndexValue == nil {
			continue
		}
		d, ok := declByName[ref.Name]
		if !ok {
			continue
		}
		idx := *ref.IndexValue
		if idx >= 0 && idx < d.size {
			continue
		}
		diags = append(diags, model.Diagnostic{
			File:     currentFile,
			Line:     ref.Line,
			Severity: model.SeverityError,
			Code:     CodeArrayBounds,
			Message: fmt.Sprintf("index %d is out of range for '%s' of size %d (declared in %s:%d)",
				idx, ref.Name, d.size, d.file, d.line),
		})
	}
	return diags
}
