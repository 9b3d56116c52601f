// Package checker implements the diagnostic pipeline. Every checker is a
// pure function of (buffer refs, buffer symbols, repo symbols, current file);
// checkers are independent of one another and of execution order, and a
// checker that cannot evaluate a reference contributes no diagnostic for it.
package checker

import "github.com/jward/vigil/internal/model"

// Func is the checker contract.
type Func func(bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) []model.Diagnostic

// BuiltIn returns the built-in checkers in their pipeline order.
func BuiltIn() []Func {
	return []Func{
		CheckTypeConsistency,
		CheckArrayBounds,
		CheckSignatureDrift,
		CheckUnsafeCalls,
	}
}

// Run invokes every checker and aggregates the combined output.
func Run(checkers []Func, bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) []model.Diagnostic {
	var all []model.Diagnostic
	for _, check := range checkers {
		all = append(all, check(bufferRefs, bufferSymbols, repoSymbols, currentFile)...)
	}
	return Aggregate(all)
}

// Aggregate deduplicates diagnostics by (file, line, code, message), keeping
// the first occurrence in emission order. No reordering beyond removal.
func Aggregate(diags []model.Diagnostic) []model.Diagnostic {
	seen := make(map[model.DedupKey]bool, len(diags))
	out := make([]model.Diagnostic, 0, len(diags))
	for _, d := range diags {
		key := d.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
