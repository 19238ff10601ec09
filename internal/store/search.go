package store

import (
	"database/sql"
	"fmt"
	"strings"

	"screendb/internal/query"
	"screendb/internal/screen"
)

// Count returns the number of measurement rows matching the filter.
func (s *Store) Count(f query.Filter) (int, error) {
	fragments, args := query.Conditions(f)
	var n int
	if err := s.db.QueryRow(query.CountSQL(fragments), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return n, nil
}

// Search returns one page of matching rows plus the total match count.
func (s *Store) Search(f query.Filter, p query.Page) ([]screen.Row, int, error) {
	total, err := s.Count(f)
	if err != nil {
		return nil, 0, err
	}

	fragments, args := query.Conditions(f)
	rows, err := s.db.Query(query.SelectSQL(fragments, p), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SearchAll returns every matching row, in rowid order. Used for grouped
// (per-gene) pagination and for exports, where the page cannot be pushed
// down into the storage query.
func (s *Store) SearchAll(f query.Filter) ([]screen.Row, error) {
	fragments, args := query.Conditions(f)
	rows, err := s.db.Query(query.SelectAllSQL(fragments), args...)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// GetRecord returns the measurement with the given rowid, or nil if absent.
func (s *Store) GetRecord(id int64) (*screen.Row, error) {
	fragments := []string{"rowid = ?"}
	rows, err := s.db.Query(query.SelectAllSQL(fragments), id)
	if err != nil {
		return nil, fmt.Errorf("query measurement: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// GeneRows returns all rows for a gene symbol (case-insensitive), in rowid
// order. An unknown symbol yields an empty slice, not an error.
func (s *Store) GeneRows(symbol string) ([]screen.Row, error) {
	fragments := []string{"LOWER(symbol) = ?"}
	rows, err := s.db.Query(query.SelectAllSQL(fragments), strings.ToLower(symbol))
	if err != nil {
		return nil, fmt.Errorf("query gene rows: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// suggestColumns whitelists the fields the autocomplete endpoint may touch.
var suggestColumns = map[string]string{
	"symbol":    "symbol",
	"cellline":  "cellline",
	"condition": "condition",
	"ensg":      "ensg",
}

// Suggest returns up to limit distinct values of the given field starting
// with prefix, case-insensitively. Unknown fields yield an empty slice.
func (s *Store) Suggest(field, prefix string, limit int) ([]string, error) {
	col, ok := suggestColumns[field]
	if !ok {
		return nil, nil
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	q := fmt.Sprintf(`SELECT DISTINCT %s FROM measurements
		WHERE %s <> '' AND LOWER(%s) LIKE ?
		ORDER BY LOWER(%s) LIMIT %d`, col, col, col, col, limit)

	rows, err := s.db.Query(q, strings.ToLower(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Stats summarizes the loaded dataset.
type Stats struct {
	TotalRows    int            `json:"totalRows"`
	TotalGenes   int            `json:"totalGenes"`
	ByChromosome map[string]int `json:"byChromosome"`
	ByCellLine   map[string]int `json:"byCellLine"`
	Log2FCMin    *float64       `json:"log2fcMin"`
	Log2FCMax    *float64       `json:"log2fcMax"`
	Log2FCMean   *float64       `json:"log2fcMean"`
}

// DatasetStats computes dataset-wide aggregates.
func (s *Store) DatasetStats() (*Stats, error) {
	st := &Stats{
		ByChromosome: map[string]int{},
		ByCellLine:   map[string]int{},
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM measurements").Scan(&st.TotalRows); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM genes").Scan(&st.TotalGenes); err != nil {
		return nil, fmt.Errorf("count genes: %w", err)
	}

	var min, max, mean sql.NullFloat64
	err := s.db.QueryRow(`SELECT MIN(v), MAX(v), AVG(v)
		FROM (SELECT TRY_CAST(log2fc AS DOUBLE) AS v FROM measurements)
		WHERE v IS NOT NULL`).Scan(&min, &max, &mean)
	if err != nil {
		return nil, fmt.Errorf("log2fc stats: %w", err)
	}
	if min.Valid {
		st.Log2FCMin = &min.Float64
	}
	if max.Valid {
		st.Log2FCMax = &max.Float64
	}
	if mean.Valid {
		st.Log2FCMean = &mean.Float64
	}

	for _, group := range []struct {
		col string
		out map[string]int
	}{
		{"chr", st.ByChromosome},
		{"cellline", st.ByCellLine},
	} {
		q := fmt.Sprintf("SELECT %s, COUNT(*) FROM measurements WHERE %s <> '' GROUP BY %s", group.col, group.col, group.col)
		rows, err := s.db.Query(q)
		if err != nil {
			return nil, fmt.Errorf("group by %s: %w", group.col, err)
		}
		for rows.Next() {
			var k string
			var n int
			if err := rows.Scan(&k, &n); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s count: %w", group.col, err)
			}
			group.out[k] = n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return st, nil
}

// scanRows scans measurement rows in selectColumns order. NULLs become
// empty strings; parsing to numbers is the formatter's job.
func scanRows(rows *sql.Rows) ([]screen.Row, error) {
	var out []screen.Row
	for rows.Next() {
		var r screen.Row
		var cols [15]sql.NullString
		if err := rows.Scan(
			&r.RowID,
			&cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
			&cols[5], &cols[6], &cols[7], &cols[8], &cols[9],
			&cols[10], &cols[11], &cols[12], &cols[13], &cols[14],
		); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		r.Chr = cols[0].String
		r.Start = cols[1].String
		r.End = cols[2].String
		r.Strand = cols[3].String
		r.Sequence = cols[4].String
		r.Symbol = cols[5].String
		r.Ensg = cols[6].String
		r.Log2FC = cols[7].String
		r.ReadsInitial = cols[8].String
		r.ReadsFinal = cols[9].String
		r.CellLine = cols[10].String
		r.Condition = cols[11].String
		r.Cas = cols[12].String
		r.ScreenType = cols[13].String
		r.PubMed = cols[14].String
		out = append(out, r)
	}
	return out, rows.Err()
}
