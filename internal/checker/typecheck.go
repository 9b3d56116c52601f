package checker

import (
	"fmt"
	"strings"

	"github.com/jward/vigil/internal/model"
)

// CodeTypeMismatch flags a symbol used with a different type than its
// repo-wide declaration.
const CodeTypeMismatch = "types/cross-file-mismatch"

// CheckTypeConsistency compares the type a read/array_access reference
// carries in the current buffer against the first repo declaration of the
// same name in a different file. First match wins and no scope resolution is
// attempted; changing that would change observable diagnostics.
func CheckTypeConsistency(bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) []model.Diagnostic {
	// Local type per name: the last explicitly typed declaration wins, else
	// the declaration kind as a fallback label.
	localTypes := make(map[string]string)
	for _, s := range bufferSymbols {
		if s.Type != "" {
			localTypes[s.Name] = s.Type
		}
	}
	for _, s := range bufferSymbols {
		if _, ok := localTypes[s.Name]; !ok {
			localTypes[s.Name] = string(s.Kind)
		}
	}

	// First repo declaration per name, same-file declarations excluded: the
	// buffer already speaks for the current file.
	repoByName := make(map[string]*model.Symbol)
	for i := range repoSymbols {
		s := &repoSymbols[i]
		if s.FilePath == currentFile {
			continue
		}
		if _, ok := repoByName[s.Name]; !ok {
			repoByName[s.Name] = s
		}
	}

	var diags []model.Diagnostic
	for _, ref := range bufferRefs {
		if ref.Kind != model.RefRead && ref.Kind != model.RefArrayAccess {
			continue
		}
		decl := repoByName[ref.Name]
		if decl == nil {
			continue
		}
		declType := decl.Type
		if declType == "" {
			declType = string(decl.Kind)
		}
		usedType := ref.InferredType
		if usedType == "" {
			usedType = localTypes[ref.Name]
		}
		if usedType == "" || declType == "" {
			continue
		}
		if strings.TrimSpace(usedType) == strings.TrimSpace(declType) {
			continue
		}
		diags = append(diags, model.Diagnostic{
			File:     currentFile,
			Line:     ref.Line,
			Severity: model.SeverityWarning,
			Code:     CodeTypeMismatch,
			Message: fmt.Sprintf("'%s' is declared as %s in %s:%d but used as %s here",
				ref.Name, declType, decl.FilePath, decl.Line, usedType),
		})
	}
	return diags
}
