package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionsEmptyFilter(t *testing.T) {
	fragments, args := Conditions(Filter{})
	assert.Empty(t, fragments)
	assert.Empty(t, args)
}

func TestConditionsWhitespaceOnlyInputs(t *testing.T) {
	f := Filter{
		Query: "   ", Chr: "\t", CellLine: " ", Condition: "  ",
		StartMin: " ", Log2FCMax: "\n",
	}
	fragments, args := Conditions(f)
	assert.Empty(t, fragments)
	assert.Empty(t, args)
}

// One bound value per placeholder occurrence, always. Earlier versions of
// this kind of builder bound the wildcarded query fewer times than the
// column count in the LIKE fragment; this guards against regressing to that.
func TestConditionsPlaceholderCountMatchesArgCount(t *testing.T) {
	filters := []Filter{
		{Query: "BRCA1"},
		{Query: "kras", Chr: "12", Strand: "+", Effect: "up"},
		{StartMin: "100", StartMax: "200", Log2FCMin: "-2", Log2FCMax: "2"},
		{Query: "a", Chr: "X", Strand: "-", Effect: "down", StartMin: "1",
			StartMax: "2", Log2FCMin: "-1", Log2FCMax: "1",
			CellLine: "HeLa", Condition: "cisplatin", ScreenType: "knockout"},
	}

	for _, f := range filters {
		fragments, args := Conditions(f)
		placeholders := strings.Count(strings.Join(fragments, " AND "), "?")
		assert.Equal(t, placeholders, len(args), "filter %+v", f)
	}
}

func TestConditionsFreeTextQuery(t *testing.T) {
	fragments, args := Conditions(Filter{Query: "BRCA1"})

	require.Len(t, fragments, 1)
	// One bound wildcard per referenced column.
	n := strings.Count(fragments[0], "LIKE ?")
	require.Equal(t, len(queryColumns), n)
	require.Len(t, args, n)
	for _, a := range args {
		assert.Equal(t, "%brca1%", a)
	}
}

func TestConditionsStrandValidation(t *testing.T) {
	for _, strand := range []string{"+", "-"} {
		fragments, args := Conditions(Filter{Strand: strand})
		require.Len(t, fragments, 1)
		assert.Equal(t, "strand = ?", fragments[0])
		assert.Equal(t, []any{strand}, args)
	}

	// Anything else is ignored, not an error.
	for _, strand := range []string{"*", "both", "+-", " + ", "1"} {
		fragments, _ := Conditions(Filter{Strand: strand})
		assert.Empty(t, fragments, "strand %q", strand)
	}
}

func TestConditionsEffectDirection(t *testing.T) {
	fragments, args := Conditions(Filter{Effect: "up"})
	require.Len(t, fragments, 1)
	assert.Contains(t, fragments[0], "> 0")
	assert.Empty(t, args)

	fragments, _ = Conditions(Filter{Effect: "down"})
	require.Len(t, fragments, 1)
	assert.Contains(t, fragments[0], "< 0")

	for _, effect := range []string{"", "sideways", "UP", "both"} {
		fragments, _ := Conditions(Filter{Effect: effect})
		assert.Empty(t, fragments, "effect %q", effect)
	}
}

func TestConditionsNumericRanges(t *testing.T) {
	fragments, args := Conditions(Filter{StartMin: "100", Log2FCMax: "-0.5"})
	require.Len(t, fragments, 2)
	assert.Equal(t, []any{100.0, -0.5}, args)

	// Invalid or non-finite bounds are silently skipped.
	for _, bad := range []string{"abc", "NaN", "Inf", "-Inf", "1e999", "12px"} {
		fragments, args := Conditions(Filter{StartMin: bad})
		assert.Empty(t, fragments, "bound %q", bad)
		assert.Empty(t, args, "bound %q", bad)
	}
}

func TestConditionsContextSubFilters(t *testing.T) {
	fragments, args := Conditions(Filter{CellLine: "HeLa", Condition: "Cisplatin"})
	require.Len(t, fragments, 2)
	assert.Contains(t, fragments[0], "cellline")
	assert.Contains(t, fragments[1], "condition")
	assert.Equal(t, []any{"%hela%", "%cisplatin%"}, args)
}

func TestConditionsNeverEmbedValues(t *testing.T) {
	hostile := "x'; DROP TABLE measurements; --"
	fragments, args := Conditions(Filter{Query: hostile, Chr: hostile, CellLine: hostile})

	for _, frag := range fragments {
		assert.NotContains(t, frag, "DROP TABLE")
	}
	assert.NotEmpty(t, args)
}

func TestConditionsIdempotent(t *testing.T) {
	f := Filter{Query: "kras", Chr: "12", Strand: "+", Effect: "down",
		StartMin: "1", Log2FCMax: "0.5", CellLine: "A549"}

	f1, a1 := Conditions(f)
	f2, a2 := Conditions(f)
	assert.Equal(t, f1, f2)
	assert.Equal(t, a1, a2)
}

func TestConditionsOrderIsStable(t *testing.T) {
	f := Filter{Query: "a", Chr: "1", Strand: "+", Effect: "up",
		StartMin: "1", StartMax: "2", Log2FCMin: "-1", Log2FCMax: "1",
		CellLine: "x", Condition: "y", ScreenType: "z"}

	fragments, _ := Conditions(f)
	require.Len(t, fragments, 11)
	assert.Contains(t, fragments[0], "LIKE")
	assert.Equal(t, "chr = ?", fragments[1])
	assert.Equal(t, "strand = ?", fragments[2])
}
