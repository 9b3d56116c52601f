// Package model defines the normalized symbol/reference records shared by the
// language adapters, the repository index, and the checkers. Both languages
// flatten into the same shapes; optional fields are pointers so "unknown" and
// zero stay distinct on the wire.
package model

// SymbolKind classifies a declaration site.
type SymbolKind string

const (
	SymbolVariable SymbolKind = "variable"
	SymbolFunction SymbolKind = "function"
	SymbolArray    SymbolKind = "array"
	SymbolClass    SymbolKind = "class"
	SymbolStruct   SymbolKind = "struct"
)

// ReferenceKind classifies a use site.
type ReferenceKind string

const (
	RefCall        ReferenceKind = "call"
	RefRead        ReferenceKind = "read"
	RefArrayAccess ReferenceKind = "array_access"
)

// Severity is the diagnostic severity level.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Param is one declared function parameter, in declaration order.
type Param struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	HasDefault bool   `json:"has_default"`
}

// Symbol is a declared name extracted from source. Symbols are immutable:
// re-extracting a file supersedes its symbols rather than editing them.
//
// Kind is "array" exactly when ArraySize is set. Only functions carry Params,
// ReturnType, and IsVariadic.
type Symbol struct {
	Name       string     `json:"name"`
	Kind       SymbolKind `json:"kind"`
	Type       string     `json:"type,omitempty"`
	FilePath   string     `json:"file_path"`
	Line       int        `json:"line"`
	Scope      string     `json:"scope"`
	ArraySize  *int       `json:"array_size,omitempty"`
	Params     []Param    `json:"params,omitempty"`
	ReturnType string     `json:"return_type,omitempty"`
	IsVariadic bool       `json:"is_variadic,omitempty"`
}

// Reference is a use-site occurrence. IndexValue is set only for array_access
// references whose subscript is a literal integer; ArgCount only for calls.
type Reference struct {
	Name         string        `json:"name"`
	Kind         ReferenceKind `json:"kind"`
	InferredType string        `json:"inferred_type,omitempty"`
	Line         int           `json:"line"`
	IndexValue   *int          `json:"index_value,omitempty"`
	ArgCount     *int          `json:"arg_count,omitempty"`
}

// Diagnostic is a reported finding.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// DedupKey identifies a diagnostic for deduplication purposes.
type DedupKey struct {
	File    string
	Line    int
	Code    string
	Message string
}

// Key returns the diagnostic's deduplication identity.
func (d Diagnostic) Key() DedupKey {
	return DedupKey{File: d.File, Line: d.Line, Code: d.Code, Message: d.Message}
}

// IntPtr returns a pointer to v. Convenience for building optional fields.
func IntPtr(v int) *int { return &v }
