package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brca1Rows() []Row {
	return []Row{
		{RowID: 1, Symbol: "BRCA1", Ensg: "ENSG00000012048", Chr: "17",
			CellLine: "HeLa", Condition: "untreated", Cas: "Cas9", Log2FC: "-2.0"},
		{RowID: 2, Symbol: "BRCA1", Ensg: "ENSG00000012048", Chr: "17",
			CellLine: "HeLa", Condition: "untreated", Cas: "Cas9", Log2FC: "-1.0"},
		{RowID: 3, Symbol: "BRCA1", Ensg: "ENSG00000012048", Chr: "17",
			CellLine: "K562", Condition: "cisplatin", Cas: "Cas9", Log2FC: "3.0"},
	}
}

func TestBuildGeneViewIdentityFromFirstRow(t *testing.T) {
	v := BuildGeneView(brca1Rows())
	assert.Equal(t, "BRCA1", v.Symbol)
	assert.Equal(t, "ENSG00000012048", v.Ensg)
	assert.Equal(t, "17", v.Chr)
}

func TestBuildGeneViewContextGrouping(t *testing.T) {
	v := BuildGeneView(brca1Rows())

	require.Len(t, v.Contexts, 2)
	// First-seen order of distinct (cellLine, condition) pairs.
	assert.Equal(t, "HeLa", v.Contexts[0].CellLine)
	assert.Equal(t, "untreated", v.Contexts[0].Condition)
	assert.Equal(t, "K562", v.Contexts[1].CellLine)

	assert.Len(t, v.Contexts[0].Measurements, 2)
	assert.Len(t, v.Contexts[1].Measurements, 1)

	// No rows dropped or duplicated.
	assert.Equal(t, 3, v.Total)
}

func TestBuildGeneViewAggregates(t *testing.T) {
	v := BuildGeneView(brca1Rows())

	require.NotNil(t, v.Contexts[0].MeanLog2FC)
	assert.InDelta(t, -1.5, *v.Contexts[0].MeanLog2FC, 1e-9)
	require.NotNil(t, v.Contexts[1].MeanLog2FC)
	assert.InDelta(t, 3.0, *v.Contexts[1].MeanLog2FC, 1e-9)

	require.NotNil(t, v.MeanLog2FC)
	assert.InDelta(t, 0.0, *v.MeanLog2FC, 1e-9)
}

func TestBuildGeneViewNoValidScores(t *testing.T) {
	v := BuildGeneView([]Row{
		{Symbol: "TP53", CellLine: "HeLa", Log2FC: "n/a"},
		{Symbol: "TP53", CellLine: "HeLa", Log2FC: ""},
	})

	require.Len(t, v.Contexts, 1)
	assert.Nil(t, v.Contexts[0].MeanLog2FC)
	assert.Nil(t, v.MeanLog2FC)
	assert.Equal(t, 2, v.Total)
}

func TestBuildGeneViewEmpty(t *testing.T) {
	v := BuildGeneView(nil)
	assert.Empty(t, v.Symbol)
	assert.Zero(t, v.Total)
	assert.Empty(t, v.Contexts)
}

func TestBuildGeneViewsSymbolOrder(t *testing.T) {
	rows := []Row{
		{RowID: 1, Symbol: "MYC", CellLine: "A"},
		{RowID: 2, Symbol: "BRCA1", CellLine: "A"},
		{RowID: 3, Symbol: "MYC", CellLine: "B"},
		{RowID: 4, Symbol: "TP53", CellLine: "A"},
	}

	views := BuildGeneViews(rows)
	require.Len(t, views, 3)
	assert.Equal(t, "MYC", views[0].Symbol)
	assert.Equal(t, "BRCA1", views[1].Symbol)
	assert.Equal(t, "TP53", views[2].Symbol)
	assert.Equal(t, 2, views[0].Total)
}

func TestBuildGeneViewsRowConservation(t *testing.T) {
	rows := brca1Rows()
	rows = append(rows,
		Row{RowID: 4, Symbol: "MYC", CellLine: "HeLa", Condition: "untreated"},
		Row{RowID: 5, Symbol: "MYC", CellLine: "HeLa", Condition: "cisplatin"},
	)

	views := BuildGeneViews(rows)
	total := 0
	for _, v := range views {
		for _, ctx := range v.Contexts {
			total += len(ctx.Measurements)
		}
		assert.Equal(t, v.Total, sumContexts(v))
	}
	assert.Equal(t, len(rows), total)
}

func sumContexts(v GeneView) int {
	n := 0
	for _, ctx := range v.Contexts {
		n += len(ctx.Measurements)
	}
	return n
}

func TestBuildGeneViewRepeatedCallsIndependent(t *testing.T) {
	rows := brca1Rows()
	v1 := BuildGeneView(rows)
	v2 := BuildGeneView(rows)

	assert.Equal(t, v1, v2)

	// Mutating one view must not leak into the other.
	v1.Contexts[0].Measurements[0].Symbol = "changed"
	assert.Equal(t, "BRCA1", v2.Contexts[0].Measurements[0].Symbol)
}
