package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vigil/internal/model"
)

func arrDecl(name, file string, line, size int) model.Symbol {
	return model.Symbol{
		Name:      name,
		Kind:      model.SymbolArray,
		FilePath:  file,
		Line:      line,
		ArraySize: model.IntPtr(size),
	}
}

func access(name string, line, idx int) model.Reference {
	return model.Reference{
		Name:       name,
		Kind:       model.RefArrayAccess,
		Line:       line,
		IndexValue: model.IntPtr(idx),
	}
}

func TestBoundsOutOfRange(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{arrDecl("arr", "core.c", 3, 10)}
	refs := []model.Reference{access("arr", 8, 12)}

	diags := CheckArrayBounds(refs, nil, repo, "main.c")
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "main.c", d.File)
	assert.Equal(t, 8, d.Line)
	assert.Equal(t, model.SeverityError, d.Severity)
	assert.Equal(t, CodeArrayBounds, d.Code)
	assert.Contains(t, d.Message, "12")
	assert.Contains(t, d.Message, "10")
	assert.Contains(t, d.Message, "core.c:3")
}

func TestBoundsBoundaryValues(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{arrDecl("arr", "core.c", 3, 10)}

	tests := []struct {
		name string
		idx  int
		want int
	}{
		{"first element", 0, 0},
		{"last element", 9, 0},
		{"one past end", 10, 1},
		{"negative", -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := CheckArrayBounds([]model.Reference{access("arr", 1, tt.idx)}, nil, repo, "main.c")
			assert.Len(t, diags, tt.want)
		})
	}
}

func TestBoundsBufferDeclarationWins(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{arrDecl("arr", "core.c", 3, 10)}
	buffer := []model.Symbol{arrDecl("arr", "", 2, 20)}

	// Index 12 is fine against the live size of 20.
	diags := CheckArrayBounds([]model.Reference{access("arr", 5, 12)}, buffer, repo, "main.c")
	assert.Empty(t, diags)

	// Out of range against the live declaration cites the current file.
	diags = CheckArrayBounds([]model.Reference{access("arr", 5, 25)}, buffer, repo, "main.c")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "main.c:2")
	assert.Contains(t, diags[0].Message, "size 20")
}

func TestBoundsSkipsUnresolvable(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{arrDecl("arr", "core.c", 3, 10)}

	// Unknown array name.
	diags := CheckArrayBounds([]model.Reference{access("other", 1, 99)}, nil, repo, "main.c")
	assert.Empty(t, diags)

	// Non-literal subscript carries no index value.
	ref := model.Reference{Name: "arr", Kind: model.RefArrayAccess, Line: 1}
	assert.Empty(t, CheckArrayBounds([]model.Reference{ref}, nil, repo, "main.c"))

	// Reads are not subscripts.
	read := model.Reference{Name: "arr", Kind: model.RefRead, Line: 1, IndexValue: model.IntPtr(99)}
	assert.Empty(t, CheckArrayBounds([]model.Reference{read}, nil, repo, "main.c"))
}
