package runtime

import (
	"context"

	"github.com/risor-io/risor/object"

	"github.com/jward/vigil/internal/model"
)

// symbolMaps converts symbols into plain maps for Risor. Risor cannot
// address Go struct fields, so scripts work with string-keyed records.
func symbolMaps(symbols []model.Symbol) []any {
	out := make([]any, 0, len(symbols))
	for _, s := range symbols {
		m := map[string]any{
			"name":        s.Name,
			"kind":        string(s.Kind),
			"type":        s.Type,
			"file_path":   s.FilePath,
			"line":        int64(s.Line),
			"scope":       s.Scope,
			"return_type": s.ReturnType,
			"is_variadic": s.IsVariadic,
		}
		if s.ArraySize != nil {
			m["array_size"] = int64(*s.ArraySize)
		}
		params := make([]any, 0, len(s.Params))
		for _, p := range s.Params {
			params = append(params, map[string]any{
				"name":        p.Name,
				"type":        p.Type,
				"has_default": p.HasDefault,
			})
		}
		m["params"] = params
		out = append(out, m)
	}
	return out
}

// referenceMaps converts references into plain maps for Risor.
func referenceMaps(refs []model.Reference) []any {
	out := make([]any, 0, len(refs))
	for _, r := range refs {
		m := map[string]any{
			"name":          r.Name,
			"kind":          string(r.Kind),
			"inferred_type": r.InferredType,
			"line":          int64(r.Line),
		}
		if r.IndexValue != nil {
			m["index_value"] = int64(*r.IndexValue)
		}
		if r.ArgCount != nil {
			m["arg_count"] = int64(*r.ArgCount)
		}
		out = append(out, m)
	}
	return out
}

// makeEmitFn creates the "emit" host function.
//
// emit({line: int, severity: string, code: string, message: string})
//
// The file defaults to the current file; severity defaults to WARNING.
// Risor cannot construct Go structs, so emit accepts a map and builds the
// Diagnostic Go-side.
func makeEmitFn(currentFile string, sink *[]model.Diagnostic) *object.Builtin {
	return object.NewBuiltin("emit", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("emit", 1, len(args))
		}
		obj, ok := args[0].(*object.Map)
		if !ok {
			return object.Errorf("emit: expected a map, got %s", args[0].Type())
		}
		m := obj.Value()

		d := model.Diagnostic{
			File:     currentFile,
			Severity: model.SeverityWarning,
		}
		if v := getString(m, "file"); v != "" {
			d.File = v
		}
		d.Line = getInt(m, "line")
		if v := getString(m, "severity"); v != "" {
			d.Severity = model.Severity(v)
		}
		d.Code = getString(m, "code")
		d.Message = getString(m, "message")
		*sink = append(*sink, d)
		return object.Nil
	})
}

// --- Map extraction helpers ---

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getInt(m map[string]object.Object, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	if i, ok := v.(*object.Int); ok {
		return int(i.Value())
	}
	if f, ok := v.(*object.Float); ok {
		return int(f.Value())
	}
	return 0
}
