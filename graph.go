package vigil

import (
	"fmt"

	"github.com/jward/vigil/internal/model"
)

// Graph is a read-only projection of the symbol table for visualization:
// one node per distinct declaration site, one REFERENCES edge per pair of
// same-name declarations.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is one declaration site. ID is "file_path:line:name".
type GraphNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Type     string `json:"type,omitempty"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
}

// GraphEdge links two nodes. Type is currently always "REFERENCES".
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// BuildGraph projects a symbol sequence into nodes and edges. Duplicate
// declaration sites collapse to one node; node and edge order follow the
// input order, so the same symbol table always yields the same graph.
func BuildGraph(symbols []model.Symbol) *Graph {
	g := &Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}

	byID := make(map[string]bool, len(symbols))
	idsByName := make(map[string][]string)
	for _, s := range symbols {
		id := fmt.Sprintf("%s:%d:%s", s.FilePath, s.Line, s.Name)
		if byID[id] {
			continue
		}
		byID[id] = true
		g.Nodes = append(g.Nodes, GraphNode{
			ID:       id,
			Label:    s.Name,
			Kind:     string(s.Kind),
			Type:     s.Type,
			FilePath: s.FilePath,
			Line:     s.Line,
		})
		idsByName[s.Name] = append(idsByName[s.Name], id)
	}

	emitted := make(map[string]bool, len(idsByName))
	for _, n := range g.Nodes {
		if emitted[n.Label] {
			continue
		}
		emitted[n.Label] = true
		ids := idsByName[n.Label]
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				g.Edges = append(g.Edges, GraphEdge{Source: ids[i], Target: ids[j], Type: "REFERENCES"})
			}
		}
	}
	return g
}
