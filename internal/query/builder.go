package query

import (
	"fmt"
	"strings"
)

// Pagination and page-size bounds. Export requests may ask for much larger
// pages than interactive search; both are clamped, never rejected.
const (
	DefaultPageSize   = 25
	MaxPageSize       = 1000
	MaxExportPageSize = 50000
)

// sortColumns whitelists the ORDER BY targets. Keys are the public sort
// names; values are the SQL expressions they map to. Anything outside this
// map falls back to the default, so raw sort input never reaches query text.
var sortColumns = map[string]string{
	"rowid":    "rowid",
	"chr":      "chr",
	"start":    "TRY_CAST(start AS BIGINT)",
	"end":      "TRY_CAST(end_ AS BIGINT)",
	"strand":   "strand",
	"symbol":   "symbol",
	"ensg":     "ensg",
	"log2fc":   "TRY_CAST(log2fc AS DOUBLE)",
	"effect":   "TRY_CAST(log2fc AS DOUBLE)",
	"cellline": "cellline",
}

const defaultSort = "rowid"

// selectColumns is the projection shared by every measurement query.
const selectColumns = "rowid, chr, start, end_, strand, sequence, symbol, ensg, " +
	"log2fc, reads_initial, reads_final, cellline, condition, cas, screentype, pubmed"

// Page holds normalized pagination and sort directives.
type Page struct {
	Number int
	Size   int
	Sort   string
	Dir    string
}

// NormalizePage clamps raw pagination input into a valid Page: page < 1
// becomes 1, size ≤ 0 becomes DefaultPageSize, size > max is clamped to max.
// sort outside the whitelist falls back to rowid; dir other than DESC
// (case-insensitive) falls back to ASC.
func NormalizePage(page, size int, sort, dir string, maxSize int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > maxSize {
		size = maxSize
	}
	if _, ok := sortColumns[sort]; !ok {
		sort = defaultSort
	}
	if strings.EqualFold(dir, "DESC") {
		dir = "DESC"
	} else {
		dir = "ASC"
	}
	return Page{Number: page, Size: size, Sort: sort, Dir: dir}
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// CountSQL builds the count query for the given condition fragments.
func CountSQL(fragments []string) string {
	return "SELECT COUNT(*) FROM measurements" + whereClause(fragments)
}

// SelectSQL builds the page query: predicate, whitelisted ORDER BY, and
// LIMIT/OFFSET. Only validated integers and whitelisted expressions are
// formatted into the text; filter values stay in the bound-args list.
func SelectSQL(fragments []string, p Page) string {
	return fmt.Sprintf("SELECT %s FROM measurements%s ORDER BY %s %s LIMIT %d OFFSET %d",
		selectColumns, whereClause(fragments), sortColumns[p.Sort], p.Dir, p.Size, p.Offset())
}

// SelectAllSQL builds the unlimited variant used for grouped (per-gene)
// pagination, where every matching row must be fetched before grouping.
// Ordering is fixed to rowid so first-seen gene order is deterministic.
func SelectAllSQL(fragments []string) string {
	return fmt.Sprintf("SELECT %s FROM measurements%s ORDER BY rowid",
		selectColumns, whereClause(fragments))
}

func whereClause(fragments []string) string {
	if len(fragments) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(fragments, " AND ")
}
