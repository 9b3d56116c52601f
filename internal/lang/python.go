package lang

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/jward/vigil/internal/model"
)

func init() {
	Languages["python"] = &Language{
		Name:              "python",
		Extensions:        []string{".py"},
		grammar:           python.GetLanguage(),
		ExtractSymbols:    pythonSymbols,
		ExtractReferences: pythonReferences,
	}
}

// pythonSymbols walks the tree collecting function, class, and assignment
// declarations. Nesting extends the dotted scope path, so a method on class
// Server lands in scope "Server" and its locals in "Server.<method>".
func pythonSymbols(source []byte, filePath string) []model.Symbol {
	l := Languages["python"]
	tree := l.parse(source)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var symbols []model.Symbol

	var walk func(node *sitter.Node, scope string)
	walk = func(node *sitter.Node, scope string) {
		switch node.Type() {
		case "function_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := strings.TrimSpace(NodeText(nameNode, source))
				params, variadic := pythonParams(node.ChildByFieldName("parameters"), source)
				sym := model.Symbol{
					Name:       name,
					Kind:       model.SymbolFunction,
					FilePath:   filePath,
					Line:       lineOf(node),
					Scope:      scope,
					Params:     params,
					IsVariadic: variadic,
				}
				if ret := node.ChildByFieldName("return_type"); ret != nil {
					rt := strings.TrimSpace(NodeText(ret, source))
					sym.ReturnType = rt
					sym.Type = rt
				}
				symbols = append(symbols, sym)
				inner := childScope(scope, name)
				for i := 0; i < int(node.ChildCount()); i++ {
					walk(node.Child(i), inner)
				}
			}
			return
		case "class_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := strings.TrimSpace(NodeText(nameNode, source))
				symbols = append(symbols, model.Symbol{
					Name:     name,
					Kind:     model.SymbolClass,
					FilePath: filePath,
					Line:     lineOf(node),
					Scope:    scope,
				})
				inner := childScope(scope, name)
				for i := 0; i < int(node.ChildCount()); i++ {
					walk(node.Child(i), inner)
				}
			}
			return
		case "assignment":
			symbols = append(symbols, pythonAssignment(node, source, filePath, scope)...)
		case "import_statement", "import_from_statement":
			symbols = append(symbols, pythonImports(node, source, filePath, scope)...)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i), scope)
		}
	}

	walk(tree.RootNode(), "")
	return symbols
}

// pythonAssignment turns assignment targets into variable symbols. Annotated
// assignments carry the annotation as the symbol type; a list-literal value
// makes the target an array sized by its element count. Underscore-prefixed
// names are treated as private/throwaway and skipped.
func pythonAssignment(node *sitter.Node, source []byte, filePath, scope string) []model.Symbol {
	var out []model.Symbol

	annotation := ""
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		annotation = strings.TrimSpace(NodeText(typeNode, source))
	}

	addTarget := func(name string) *model.Symbol {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(name, "_") {
			return nil
		}
		out = append(out, model.Symbol{
			Name:     name,
			Kind:     model.SymbolVariable,
			Type:     annotation,
			FilePath: filePath,
			Line:     lineOf(node),
			Scope:    scope,
		})
		return &out[len(out)-1]
	}

	left := node.ChildByFieldName("left")
	if left == nil {
		return nil
	}
	switch left.Type() {
	case "identifier":
		sym := addTarget(NodeText(left, source))
		// Single-target list literals get sized as arrays.
		if sym != nil && annotation == "" {
			if right := node.ChildByFieldName("right"); right != nil && right.Type() == "list" {
				n := int(right.NamedChildCount())
				sym.Kind = model.SymbolArray
				sym.Type = "list"
				sym.ArraySize = model.IntPtr(n)
			}
		}
	case "pattern_list", "tuple_pattern", "list_pattern":
		for i := 0; i < int(left.ChildCount()); i++ {
			c := left.Child(i)
			if c.Type() == "identifier" {
				addTarget(NodeText(c, source))
			}
		}
	}
	return out
}

// pythonImports turns import statements into module-typed variable symbols,
// one per bound name: the first dotted component for "import a.b", the alias
// for "import x as y", each imported name for "from m import a, b". The
// module path of a from-import binds nothing itself.
func pythonImports(node *sitter.Node, source []byte, filePath, scope string) []model.Symbol {
	var out []model.Symbol
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(name, "_") {
			return
		}
		out = append(out, model.Symbol{
			Name:     name,
			Kind:     model.SymbolVariable,
			Type:     "module",
			FilePath: filePath,
			Line:     lineOf(node),
			Scope:    scope,
		})
	}

	// Names before the "import" keyword belong to the module path of a
	// from-import and are skipped.
	seenImport := false
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "import":
			seenImport = true
		case "dotted_name":
			if seenImport && c.NamedChildCount() > 0 {
				add(NodeText(c.NamedChild(0), source))
			}
		case "aliased_import":
			if !seenImport {
				continue
			}
			if alias := c.ChildByFieldName("alias"); alias != nil {
				add(NodeText(alias, source))
			}
		}
	}
	return out
}

// pythonParams enumerates a parameter list in order, skipping the implicit
// receiver name. Splat parameters mark the function variadic.
func pythonParams(params *sitter.Node, source []byte) ([]model.Param, bool) {
	if params == nil {
		return nil, false
	}
	var out []model.Param
	variadic := false
	for i := 0; i < int(params.ChildCount()); i++ {
		c := params.Child(i)
		switch c.Type() {
		case "identifier":
			name := strings.TrimSpace(NodeText(c, source))
			if name == "self" {
				continue
			}
			out = append(out, model.Param{Name: name})
		case "typed_parameter":
			p := model.Param{}
			for j := 0; j < int(c.ChildCount()); j++ {
				sub := c.Child(j)
				if sub.Type() == "identifier" && p.Name == "" {
					p.Name = strings.TrimSpace(NodeText(sub, source))
				}
			}
			if typeNode := c.ChildByFieldName("type"); typeNode != nil {
				p.Type = strings.TrimSpace(NodeText(typeNode, source))
			}
			if p.Name != "" && p.Name != "self" {
				out = append(out, p)
			}
		case "default_parameter", "typed_default_parameter":
			p := model.Param{HasDefault: true}
			if nameNode := c.ChildByFieldName("name"); nameNode != nil {
				p.Name = strings.TrimSpace(NodeText(nameNode, source))
			}
			if typeNode := c.ChildByFieldName("type"); typeNode != nil {
				p.Type = strings.TrimSpace(NodeText(typeNode, source))
			}
			if p.Name != "" && p.Name != "self" {
				out = append(out, p)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			variadic = true
			out = append(out, model.Param{Name: strings.TrimSpace(NodeText(c, source))})
		}
	}
	return out, variadic
}

// pythonReadParents are node types whose direct identifier children are not
// free reads: call targets, definition headers, parameter lists, and
// attribute access positions.
var pythonReadParents = map[string]bool{
	"call":                    true,
	"function_definition":     true,
	"class_definition":        true,
	"parameters":              true,
	"typed_parameter":         true,
	"default_parameter":       true,
	"typed_default_parameter": true,
	"attribute":               true,
}

func pythonReferences(source []byte, filePath string) []model.Reference {
	l := Languages["python"]
	tree := l.parse(source)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var refs []model.Reference

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "call":
			if fn := node.ChildByFieldName("function"); fn != nil {
				refs = append(refs, model.Reference{
					Name:     strings.TrimSpace(NodeText(fn, source)),
					Kind:     model.RefCall,
					Line:     lineOf(node),
					ArgCount: model.IntPtr(countArgs(node.ChildByFieldName("arguments"))),
				})
			}
		case "subscript":
			value := node.ChildByFieldName("value")
			index := node.ChildByFieldName("subscript")
			if index == nil {
				index = node.ChildByFieldName("index")
			}
			if index == nil && node.ChildCount() >= 4 {
				index = node.Child(2)
			}
			if value != nil && index != nil {
				ref := model.Reference{
					Name: strings.TrimSpace(NodeText(value, source)),
					Kind: model.RefArrayAccess,
					Line: lineOf(node),
				}
				if v, err := strconv.ParseInt(strings.TrimSpace(NodeText(index, source)), 0, 64); err == nil {
					ref.IndexValue = model.IntPtr(int(v))
				}
				refs = append(refs, ref)
			}
		case "identifier":
			parent := node.Parent()
			if parent != nil && !pythonReadParents[parent.Type()] {
				name := strings.TrimSpace(NodeText(node, source))
				if name != "" && !strings.HasPrefix(name, "_") {
					refs = append(refs, model.Reference{
						Name: name,
						Kind: model.RefRead,
						Line: lineOf(node),
					})
				}
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}

	walk(tree.RootNode())
	return refs
}
