// Package lang provides the per-language adapters that turn raw source into
// normalized Symbol and Reference lists. Adapters are registered by init()
// functions in per-language files and looked up by file extension.
//
// Adapters degrade gracefully: a parse failure or unknown extension yields
// empty slices, never an error. Checkers then simply see no data for the file.
package lang

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/vigil/internal/model"
)

// Language holds the tree-sitter configuration and extraction hooks for one
// supported language.
type Language struct {
	Name       string
	Extensions []string
	grammar    *sitter.Language

	// ExtractSymbols walks a parsed tree and returns declaration sites.
	ExtractSymbols func(source []byte, filePath string) []model.Symbol

	// ExtractReferences walks a parsed tree and returns use sites.
	ExtractReferences func(source []byte, filePath string) []model.Reference
}

// parse runs tree-sitter over the source. Returns nil when the grammar is
// unavailable or parsing fails, which adapters treat as "no data".
func (l *Language) parse(source []byte) *sitter.Tree {
	if l.grammar == nil {
		return nil
	}
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(l.grammar)
	tree, err := p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	return tree
}

// Languages maps language names to their configuration. Populated by init()
// functions in python.go and c.go.
var Languages = map[string]*Language{}

var (
	extensionMap  map[string]string
	extensionOnce sync.Once
)

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForName returns the language with the given canonical name, or nil.
func ForName(name string) *Language {
	return Languages[name]
}

// ForFile returns the language responsible for a file path based on its
// extension, or nil if the extension is not recognized.
func ForFile(path string) *Language {
	ext := strings.ToLower(filepath.Ext(path))
	name, ok := getExtensionMap()[ext]
	if !ok {
		return nil
	}
	return Languages[name]
}

// Detect resolves a language by explicit name first, falling back to the
// file extension. Returns nil if neither matches.
func Detect(path, language string) *Language {
	if language != "" {
		if l := ForName(language); l != nil {
			return l
		}
		return nil
	}
	return ForFile(path)
}

// ExtractSymbols extracts symbols from source using the adapter selected by
// the language override or the file extension. Unknown languages yield nil.
func ExtractSymbols(source []byte, filePath, language string) []model.Symbol {
	l := Detect(filePath, language)
	if l == nil {
		return nil
	}
	return l.ExtractSymbols(source, filePath)
}

// ExtractReferences is the reference-side counterpart of ExtractSymbols.
func ExtractReferences(source []byte, filePath, language string) []model.Reference {
	l := Detect(filePath, language)
	if l == nil {
		return nil
	}
	return l.ExtractReferences(source, filePath)
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// lineOf returns the 1-based line of a node's start.
func lineOf(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// childScope extends a dotted scope path with a nested name.
func childScope(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// countArgs counts argument-list children, excluding the parentheses and
// comma tokens. Keyword arguments and splats each count as one.
func countArgs(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	n := 0
	for i := 0; i < int(args.ChildCount()); i++ {
		switch args.Child(i).Type() {
		case "(", ")", ",":
		default:
			n++
		}
	}
	return n
}
