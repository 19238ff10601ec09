package store

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"screendb/internal/screen"
)

// columnAliases maps accepted CSV header names (lowercased) to measurement
// fields. Published screen datasets vary in header spelling; unknown columns
// are dropped rather than attached.
var columnAliases = map[string]string{
	"chr":           "chr",
	"chromosome":    "chr",
	"start":         "start",
	"end":           "end",
	"stop":          "end",
	"strand":        "strand",
	"sequence":      "sequence",
	"sgrna":         "sequence",
	"guide":         "sequence",
	"symbol":        "symbol",
	"gene":          "symbol",
	"gene_symbol":   "symbol",
	"ensg":          "ensg",
	"ensembl":       "ensg",
	"log2fc":        "log2fc",
	"lfc":           "log2fc",
	"effect":        "log2fc",
	"reads_initial": "reads_initial",
	"reads0":        "reads_initial",
	"reads_final":   "reads_final",
	"reads1":        "reads_final",
	"cellline":      "cellline",
	"cell_line":     "cellline",
	"condition":     "condition",
	"treatment":     "condition",
	"cas":           "cas",
	"nuclease":      "cas",
	"screentype":    "screentype",
	"screen_type":   "screentype",
	"pubmed":        "pubmed",
	"pmid":          "pubmed",
}

// LoadCSV imports a flat screening CSV into the measurements table and
// rebuilds the normalized genes and experiments tables. The first record is
// the header; delimiter may be comma or tab (detected from the header line).
func (s *Store) LoadCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return s.loadCSV(f)
}

func (s *Store) loadCSV(r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	cr := csv.NewReader(br)
	if peek, err := br.Peek(4096); err == nil || len(peek) > 0 {
		line := string(peek)
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if strings.Count(line, "\t") > strings.Count(line, ",") {
			cr.Comma = '\t'
		}
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	// Map each column index to a measurement field, if recognized.
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = columnAliases[strings.ToLower(strings.TrimSpace(h))]
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO measurements
		(chr, start, end_, strand, sequence, symbol, ensg, log2fc,
		 reads_initial, reads_final, cellline, condition, cas, screentype, pubmed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read record %d: %w", count+1, err)
		}

		var row screen.Row
		for i, val := range record {
			if i >= len(fields) {
				break
			}
			setField(&row, fields[i], strings.TrimSpace(val))
		}
		if row.Symbol == "" && row.Sequence == "" {
			continue
		}

		if _, err := stmt.Exec(
			row.Chr, row.Start, row.End, row.Strand, row.Sequence,
			row.Symbol, row.Ensg, row.Log2FC,
			row.ReadsInitial, row.ReadsFinal,
			row.CellLine, row.Condition, row.Cas, row.ScreenType, row.PubMed,
		); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", count+1, err)
		}
		count++
		if count%10000 == 0 {
			s.logger.Info("import progress", zap.Int("rows", count))
		}
	}

	if err := rebuildProjections(tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info("import complete", zap.Int("rows", count))
	return count, nil
}

// rebuildProjections refreshes the normalized gene and experiment tables
// from the flat data. Duplicate symbols keep the first row seen.
func rebuildProjections(tx *sql.Tx) error {
	stmts := []string{
		"DELETE FROM genes",
		`INSERT INTO genes
			SELECT symbol, MIN(ensg), MIN(chr) FROM measurements
			WHERE symbol <> '' GROUP BY symbol`,
		"DELETE FROM experiments",
		`INSERT INTO experiments
			SELECT cellline, condition, MIN(cas), MIN(screentype), MIN(pubmed)
			FROM measurements GROUP BY cellline, condition`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("rebuild projections: %w", err)
		}
	}
	return nil
}

func setField(row *screen.Row, field, val string) {
	switch field {
	case "chr":
		row.Chr = val
	case "start":
		row.Start = val
	case "end":
		row.End = val
	case "strand":
		row.Strand = val
	case "sequence":
		row.Sequence = val
	case "symbol":
		row.Symbol = val
	case "ensg":
		row.Ensg = val
	case "log2fc":
		row.Log2FC = val
	case "reads_initial":
		row.ReadsInitial = val
	case "reads_final":
		row.ReadsFinal = val
	case "cellline":
		row.CellLine = val
	case "condition":
		row.Condition = val
	case "cas":
		row.Cas = val
	case "screentype":
		row.ScreenType = val
	case "pubmed":
		row.PubMed = val
	}
}
