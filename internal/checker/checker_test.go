package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vigil/internal/model"
)

func TestAggregateDeduplicates(t *testing.T) {
	t.Parallel()

	d1 := model.Diagnostic{File: "a.py", Line: 3, Code: "x", Message: "m"}
	d2 := model.Diagnostic{File: "a.py", Line: 3, Code: "x", Message: "m"}
	d3 := model.Diagnostic{File: "a.py", Line: 3, Code: "x", Message: "other"}
	d4 := model.Diagnostic{File: "b.py", Line: 3, Code: "x", Message: "m"}

	out := Aggregate([]model.Diagnostic{d1, d2, d3, d4, d1})
	require.Len(t, out, 3)
	assert.Equal(t, []model.Diagnostic{d1, d3, d4}, out)
}

func TestAggregateKeepsFirstOccurrenceOrder(t *testing.T) {
	t.Parallel()

	a := model.Diagnostic{File: "f", Line: 1, Code: "a", Message: "first"}
	b := model.Diagnostic{File: "f", Line: 2, Code: "b", Message: "second"}
	out := Aggregate([]model.Diagnostic{a, b, a, b})
	assert.Equal(t, []model.Diagnostic{a, b}, out)
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Aggregate(nil))
}

func TestRunCombinesCheckers(t *testing.T) {
	t.Parallel()

	emit := func(d model.Diagnostic) Func {
		return func(_ []model.Reference, _ []model.Symbol, _ []model.Symbol, _ string) []model.Diagnostic {
			return []model.Diagnostic{d}
		}
	}
	d1 := model.Diagnostic{File: "f", Line: 1, Code: "one", Message: "m"}
	d2 := model.Diagnostic{File: "f", Line: 2, Code: "two", Message: "m"}

	out := Run([]Func{emit(d1), emit(d2), emit(d1)}, nil, nil, nil, "f")
	assert.Equal(t, []model.Diagnostic{d1, d2}, out)
}

func TestBuiltInCount(t *testing.T) {
	t.Parallel()

	assert.Len(t, BuiltIn(), 4)
}
