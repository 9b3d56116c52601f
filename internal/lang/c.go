package lang

import (
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/jward/vigil/internal/model"
)

func init() {
	Languages["c"] = &Language{
		Name:              "c",
		Extensions:        []string{".c", ".h"},
		grammar:           c.GetLanguage(),
		ExtractSymbols:    cSymbols,
		ExtractReferences: cReferences,
	}
}

// cTypeString composes a type from a declaration's specifier tokens plus a
// trailing "*" for pointer declarators. Defaults to "int" when the grammar
// exposes no specifier.
func cTypeString(node *sitter.Node, source []byte) string {
	var parts []string
	for i := 0; i < int(node.ChildCount()); i++ {
		ch := node.Child(i)
		switch ch.Type() {
		case "primitive_type", "sized_type_specifier", "type_identifier", "struct_specifier":
			parts = append(parts, strings.TrimSpace(NodeText(ch, source)))
		case "pointer_declarator":
			if ch.ChildCount() > 0 {
				parts = append(parts, "*")
			}
		}
	}
	if len(parts) == 0 {
		return "int"
	}
	return strings.Join(parts, " ")
}

// cArraySize resolves a literal array size from a declarator subtree: the
// size field first, then any sibling number literal.
func cArraySize(node *sitter.Node, source []byte) *int {
	if node.Type() == "array_declarator" {
		if sizeNode := node.ChildByFieldName("size"); sizeNode != nil {
			if v, err := strconv.ParseInt(strings.TrimSpace(NodeText(sizeNode, source)), 0, 64); err == nil {
				return model.IntPtr(int(v))
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			sub := node.Child(i)
			if sub.Type() == "number_literal" {
				if v, err := strconv.ParseInt(strings.TrimSpace(NodeText(sub, source)), 0, 64); err == nil {
					return model.IntPtr(int(v))
				}
				return nil
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if ch := node.Child(i); ch.Type() == "array_declarator" {
			return cArraySize(ch, source)
		}
	}
	return nil
}

// cIdentifier finds the first identifier in a declarator subtree.
func cIdentifier(node *sitter.Node, source []byte) string {
	if node.Type() == "identifier" {
		return strings.TrimSpace(NodeText(node, source))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if name := cIdentifier(node.Child(i), source); name != "" {
			return name
		}
	}
	return ""
}

func cSymbols(source []byte, filePath string) []model.Symbol {
	l := Languages["c"]
	tree := l.parse(source)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var symbols []model.Symbol

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "function_definition":
			if sym, ok := cFunction(node, source, filePath); ok {
				symbols = append(symbols, sym)
			}
		case "declaration":
			symbols = append(symbols, cDeclaration(node, source, filePath)...)
		case "struct_specifier":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				symbols = append(symbols, model.Symbol{
					Name:     strings.TrimSpace(NodeText(nameNode, source)),
					Kind:     model.SymbolStruct,
					Type:     "struct",
					FilePath: filePath,
					Line:     lineOf(node),
				})
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())

	// Grammar versions differ in whether array_declarator sizes surface on
	// declarations; re-scan the raw declaration line for "name[<digits>]" to
	// recover sizes the tree missed.
	lines := strings.Split(string(source), "\n")
	for i := range symbols {
		s := &symbols[i]
		if s.ArraySize != nil {
			continue
		}
		idx := s.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(s.Name) + `\s*\[\s*(\d+)\s*\]`)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(lines[idx]); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				s.ArraySize = model.IntPtr(v)
				s.Kind = model.SymbolArray
			}
		}
	}

	return symbols
}

// cFunction builds a function symbol from a function_definition node: the
// composed return type, and parameters typed by the same composition rule.
func cFunction(node *sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil || declarator.Type() != "function_declarator" {
		return model.Symbol{}, false
	}
	idNode := declarator.ChildByFieldName("declarator")
	if idNode == nil || idNode.Type() != "identifier" {
		return model.Symbol{}, false
	}

	var params []model.Param
	if paramList := declarator.ChildByFieldName("parameters"); paramList != nil {
		for i := 0; i < int(paramList.ChildCount()); i++ {
			pd := paramList.Child(i)
			if pd.Type() != "parameter_declaration" {
				continue
			}
			name := ""
			if pdecl := pd.ChildByFieldName("declarator"); pdecl != nil {
				name = cIdentifier(pdecl, source)
			}
			if name == "" {
				continue
			}
			params = append(params, model.Param{Name: name, Type: cTypeString(pd, source)})
		}
	}

	typ := cTypeString(node, source)
	return model.Symbol{
		Name:       strings.TrimSpace(NodeText(idNode, source)),
		Kind:       model.SymbolFunction,
		Type:       typ,
		ReturnType: typ,
		FilePath:   filePath,
		Line:       lineOf(node),
		Params:     params,
	}, true
}

// cDeclaration emits a variable or array symbol per declared identifier.
// Function prototypes also land here and surface as variables, which is
// enough for name-based cross-file matching.
func cDeclaration(node *sitter.Node, source []byte, filePath string) []model.Symbol {
	typ := cTypeString(node, source)
	var out []model.Symbol
	for i := 0; i < int(node.ChildCount()); i++ {
		ch := node.Child(i)
		switch ch.Type() {
		case "init_declarator", "array_declarator", "pointer_declarator", "identifier", "function_declarator":
		default:
			continue
		}
		d := ch
		if ch.Type() == "init_declarator" {
			if inner := ch.ChildByFieldName("declarator"); inner != nil {
				d = inner
			}
		}
		name := cIdentifier(d, source)
		if name == "" {
			continue
		}
		sym := model.Symbol{
			Name:     name,
			Kind:     model.SymbolVariable,
			Type:     typ,
			FilePath: filePath,
			Line:     lineOf(node),
		}
		if size := cArraySize(d, source); size != nil {
			sym.Kind = model.SymbolArray
			sym.ArraySize = size
		}
		out = append(out, sym)
	}
	return out
}

// cSubscriptRe matches identifier[<digits>] anywhere in raw source. The
// grammar-based walk misses some subscript forms, so the whole file is
// scanned as a best-effort fallback; duplicate findings at the same site are
// the aggregator's problem, not the adapter's.
var cSubscriptRe = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*\[\s*(\d+)\s*\]`)

func cReferences(source []byte, filePath string) []model.Reference {
	l := Languages["c"]
	var refs []model.Reference

	if tree := l.parse(source); tree != nil {
		defer tree.Close()

		var walk func(node *sitter.Node)
		walk = func(node *sitter.Node) {
			switch node.Type() {
			case "call_expression":
				fn := node.ChildByFieldName("function")
				if fn != nil && fn.Type() == "identifier" {
					refs = append(refs, model.Reference{
						Name:     strings.TrimSpace(NodeText(fn, source)),
						Kind:     model.RefCall,
						Line:     lineOf(node),
						ArgCount: model.IntPtr(countArgs(node.ChildByFieldName("arguments"))),
					})
				}
			case "subscript_expression":
				arr := node.ChildByFieldName("argument")
				idx := node.ChildByFieldName("index")
				// Some grammar versions expose no named fields here; fall
				// back to positional children (base, '[', index, ']').
				if (arr == nil || idx == nil) && node.ChildCount() >= 4 {
					arr = node.Child(0)
					idx = node.Child(2)
				}
				if arr != nil && idx != nil {
					ref := model.Reference{
						Name: strings.TrimSpace(NodeText(arr, source)),
						Kind: model.RefArrayAccess,
						Line: lineOf(node),
					}
					if v, err := strconv.ParseInt(strings.TrimSpace(NodeText(idx, source)), 0, 64); err == nil {
						ref.IndexValue = model.IntPtr(int(v))
					}
					refs = append(refs, ref)
				}
			}
			for i := 0; i < int(node.ChildCount()); i++ {
				walk(node.Child(i))
			}
		}
		walk(tree.RootNode())
	}

	// Whole-file regex fallback, independent of grammar extraction.
	for _, m := range cSubscriptRe.FindAllSubmatchIndex(source, -1) {
		name := string(source[m[2]:m[3]])
		ref := model.Reference{
			Name: name,
			Kind: model.RefArrayAccess,
			Line: strings.Count(string(source[:m[0]]), "\n") + 1,
		}
		if v, err := strconv.Atoi(string(source[m[4]:m[5]])); err == nil {
			ref.IndexValue = model.IntPtr(v)
		}
		refs = append(refs, ref)
	}

	return refs
}
