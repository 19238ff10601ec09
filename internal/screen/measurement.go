// Package screen provides the domain model for CRISPR screening data:
// flat measurement entities and hierarchical per-gene views.
package screen

import (
	"math"
	"strconv"
	"strings"
)

// Row is one raw storage row from the measurements table. All values arrive
// as text because the source dataset stores numeric columns as strings;
// parsing happens in FormatRow, never upstream.
type Row struct {
	RowID        int64
	Chr          string
	Start        string
	End          string
	Strand       string
	Sequence     string
	Symbol       string
	Ensg         string
	Log2FC       string
	ReadsInitial string
	ReadsFinal   string
	CellLine     string
	Condition    string
	Cas          string
	ScreenType   string
	PubMed       string
}

// Measurement is one guide-level observation, with numeric fields parsed and
// derived fields computed. Nil pointers mark values that failed to parse.
type Measurement struct {
	RowID        int64    `json:"rowid"`
	Chr          string   `json:"chr"`
	Start        *int64   `json:"start"`
	End          *int64   `json:"end"`
	Strand       string   `json:"strand"`
	Sequence     string   `json:"sequence"`
	Symbol       string   `json:"symbol"`
	Ensg         string   `json:"ensg"`
	Log2FC       *float64 `json:"log2fc"`
	ReadsInitial *int64   `json:"readsInitial"`
	ReadsFinal   *int64   `json:"readsFinal"`
	CellLine     string   `json:"cellLine"`
	Condition    string   `json:"condition"`
	Cas          string   `json:"cas"`
	ScreenType   string   `json:"screenType"`
	PubMed       string   `json:"pubmed"`

	// Derived from Start/End/Log2FC; nil when an input is nil.
	Midpoint   *float64 `json:"midpoint"`
	Length     *int64   `json:"length"`
	FoldChange *float64 `json:"foldChange"`
}

// FormatRow maps a raw row into a Measurement. It is total: malformed input
// degrades to nil fields, it never fails.
func FormatRow(r Row) Measurement {
	m := Measurement{
		RowID:      r.RowID,
		Chr:        r.Chr,
		Strand:     r.Strand,
		Sequence:   r.Sequence,
		Symbol:     r.Symbol,
		Ensg:       r.Ensg,
		CellLine:   r.CellLine,
		Condition:  r.Condition,
		Cas:        r.Cas,
		ScreenType: r.ScreenType,
		PubMed:     r.PubMed,
	}

	m.Start = parseInt(r.Start)
	m.End = parseInt(r.End)
	m.Log2FC = parseFloat(r.Log2FC)
	m.ReadsInitial = parseInt(r.ReadsInitial)
	m.ReadsFinal = parseInt(r.ReadsFinal)

	if m.Start != nil && m.End != nil {
		mid := float64(*m.Start+*m.End) / 2
		m.Midpoint = &mid
		length := *m.End - *m.Start
		if length < 0 {
			length = -length
		}
		length++
		m.Length = &length
	}
	if m.Log2FC != nil {
		fc := math.Pow(2, *m.Log2FC)
		m.FoldChange = &fc
	}

	return m
}

// parseInt returns nil unless s parses as a base-10 integer. Values like
// "100.0" from spreadsheet exports are accepted when the float is integral.
func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	n := int64(f)
	return &n
}

// parseFloat returns nil unless s parses as a finite float.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
