// Package export provides CSV and JSON writers for filtered result sets.
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"screendb/internal/screen"
)

// CSVWriter writes measurements in comma-delimited format, derived fields
// included. Empty cells mark values that failed to parse.
type CSVWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewCSVWriter creates a new CSV export writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"rowid",
			"chr",
			"start",
			"end",
			"strand",
			"sequence",
			"symbol",
			"ensg",
			"log2fc",
			"fold_change",
			"midpoint",
			"length",
			"reads_initial",
			"reads_final",
			"cellline",
			"condition",
			"cas",
			"screentype",
			"pubmed",
		},
	}
}

// WriteHeader writes the header line.
func (cw *CSVWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(cw.columns, ",") + "\n")
	return err
}

// Write writes a single measurement.
func (cw *CSVWriter) Write(m screen.Measurement) error {
	fields := []string{
		strconv.FormatInt(m.RowID, 10),
		csvEscape(m.Chr),
		formatInt(m.Start),
		formatInt(m.End),
		csvEscape(m.Strand),
		csvEscape(m.Sequence),
		csvEscape(m.Symbol),
		csvEscape(m.Ensg),
		formatFloat(m.Log2FC),
		formatFloat(m.FoldChange),
		formatFloat(m.Midpoint),
		formatInt(m.Length),
		formatInt(m.ReadsInitial),
		formatInt(m.ReadsFinal),
		csvEscape(m.CellLine),
		csvEscape(m.Condition),
		csvEscape(m.Cas),
		csvEscape(m.ScreenType),
		csvEscape(m.PubMed),
	}
	_, err := cw.w.WriteString(strings.Join(fields, ",") + "\n")
	return err
}

// Flush flushes buffered output.
func (cw *CSVWriter) Flush() error {
	return cw.w.Flush()
}

func formatInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
