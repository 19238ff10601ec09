package screen

// ContextView groups the measurements of one gene that share an experiment
// context (cell line + condition). Assay metadata is taken from the first
// row seen for the context.
type ContextView struct {
	CellLine     string        `json:"cellLine"`
	Condition    string        `json:"condition"`
	Cas          string        `json:"cas"`
	ScreenType   string        `json:"screenType"`
	PubMed       string        `json:"pubmed"`
	Measurements []Measurement `json:"measurements"`
	MeanLog2FC   *float64      `json:"meanLog2fc"`
}

// GeneView is the hierarchical aggregate for one gene: its identity, its
// experiment contexts in first-seen order, and summary statistics. It is
// built once per request and never mutated afterwards.
type GeneView struct {
	Symbol     string        `json:"symbol"`
	Ensg       string        `json:"ensg"`
	Chr        string        `json:"chr"`
	Contexts   []ContextView `json:"contexts"`
	Total      int           `json:"total"`
	MeanLog2FC *float64      `json:"meanLog2fc"`
}

type contextKey struct {
	cellLine  string
	condition string
}

// BuildGeneView folds rows sharing one gene symbol into a GeneView. Gene
// identity comes from the first row; distinct (cellLine, condition) pairs
// become contexts in first-seen order. The measurement count across all
// contexts always equals len(rows).
func BuildGeneView(rows []Row) GeneView {
	if len(rows) == 0 {
		return GeneView{}
	}

	v := GeneView{
		Symbol: rows[0].Symbol,
		Ensg:   rows[0].Ensg,
		Chr:    rows[0].Chr,
	}

	index := make(map[contextKey]int)
	for _, r := range rows {
		key := contextKey{cellLine: r.CellLine, condition: r.Condition}
		i, ok := index[key]
		if !ok {
			i = len(v.Contexts)
			index[key] = i
			v.Contexts = append(v.Contexts, ContextView{
				CellLine:   r.CellLine,
				Condition:  r.Condition,
				Cas:        r.Cas,
				ScreenType: r.ScreenType,
				PubMed:     r.PubMed,
			})
		}
		m := FormatRow(r)
		v.Contexts[i].Measurements = append(v.Contexts[i].Measurements, m)
	}

	var geneSum float64
	var geneN int
	for i := range v.Contexts {
		ctx := &v.Contexts[i]
		var sum float64
		var n int
		for _, m := range ctx.Measurements {
			if m.Log2FC != nil {
				sum += *m.Log2FC
				n++
			}
		}
		if n > 0 {
			mean := sum / float64(n)
			ctx.MeanLog2FC = &mean
			geneSum += sum
			geneN += n
		}
		v.Total += len(ctx.Measurements)
	}
	if geneN > 0 {
		mean := geneSum / float64(geneN)
		v.MeanLog2FC = &mean
	}

	return v
}

// BuildGeneViews groups a full result set by gene symbol, preserving the
// first-seen order of distinct symbols, and assembles one view per gene.
func BuildGeneViews(rows []Row) []GeneView {
	index := make(map[string]int)
	var groups [][]Row
	for _, r := range rows {
		i, ok := index[r.Symbol]
		if !ok {
			i = len(groups)
			index[r.Symbol] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}

	views := make([]GeneView, len(groups))
	for i, g := range groups {
		views[i] = BuildGeneView(g)
	}
	return views
}
