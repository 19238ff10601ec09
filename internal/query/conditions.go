// Package query builds parameterized search queries over the measurements
// table: condition accumulation from untrusted filter input, sort-field
// whitelisting, and page/count query assembly.
package query

import (
	"math"
	"strconv"
	"strings"
)

// Filter is an immutable snapshot of the user-supplied search predicates.
// All values are untrusted text; unparseable or unrecognized values
// contribute no condition rather than erroring.
type Filter struct {
	Query      string `json:"query,omitempty"`
	Chr        string `json:"chr,omitempty"`
	Strand     string `json:"strand,omitempty"`
	Effect     string `json:"effect,omitempty"`
	StartMin   string `json:"startMin,omitempty"`
	StartMax   string `json:"startMax,omitempty"`
	Log2FCMin  string `json:"log2fcMin,omitempty"`
	Log2FCMax  string `json:"log2fcMax,omitempty"`
	CellLine   string `json:"cellLine,omitempty"`
	Condition  string `json:"condition,omitempty"`
	ScreenType string `json:"screenType,omitempty"`
}

// queryColumns are the text columns the free-text query matches against.
// The wildcarded query value is bound once per column referenced.
var queryColumns = []string{"symbol", "ensg", "sequence", "cellline"}

// Conditions turns the filter into an ordered list of predicate fragments
// and a matching ordered list of bound values. Dynamic values always travel
// as bound parameters; fragment text never embeds user input. Building is
// pure: the same filter always yields structurally identical output.
func Conditions(f Filter) (fragments []string, args []any) {
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		parts := make([]string, len(queryColumns))
		for i, col := range queryColumns {
			parts[i] = "LOWER(" + col + ") LIKE ?"
			args = append(args, like)
		}
		fragments = append(fragments, "("+strings.Join(parts, " OR ")+")")
	}

	if chr := strings.TrimSpace(f.Chr); chr != "" {
		fragments = append(fragments, "chr = ?")
		args = append(args, chr)
	}

	// Strand must be exactly + or -; anything else is ignored.
	if f.Strand == "+" || f.Strand == "-" {
		fragments = append(fragments, "strand = ?")
		args = append(args, f.Strand)
	}

	switch f.Effect {
	case "up":
		fragments = append(fragments, "TRY_CAST(log2fc AS DOUBLE) > 0")
	case "down":
		fragments = append(fragments, "TRY_CAST(log2fc AS DOUBLE) < 0")
	}

	if v, ok := finite(f.StartMin); ok {
		fragments = append(fragments, "TRY_CAST(start AS DOUBLE) >= ?")
		args = append(args, v)
	}
	if v, ok := finite(f.StartMax); ok {
		fragments = append(fragments, "TRY_CAST(start AS DOUBLE) <= ?")
		args = append(args, v)
	}
	if v, ok := finite(f.Log2FCMin); ok {
		fragments = append(fragments, "TRY_CAST(log2fc AS DOUBLE) >= ?")
		args = append(args, v)
	}
	if v, ok := finite(f.Log2FCMax); ok {
		fragments = append(fragments, "TRY_CAST(log2fc AS DOUBLE) <= ?")
		args = append(args, v)
	}

	for _, sub := range []struct {
		col string
		val string
	}{
		{"cellline", f.CellLine},
		{"condition", f.Condition},
		{"screentype", f.ScreenType},
	} {
		if v := strings.TrimSpace(sub.val); v != "" {
			fragments = append(fragments, "LOWER("+sub.col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(v)+"%")
		}
	}

	return fragments, args
}

// finite parses s as a float and reports whether it is a usable finite bound.
func finite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
