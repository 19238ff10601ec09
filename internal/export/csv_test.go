package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screendb/internal/screen"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	require.NoError(t, w.WriteHeader())
	m := screen.FormatRow(screen.Row{
		RowID: 1, Chr: "17", Start: "100", End: "200", Strand: "+",
		Sequence: "ACGT", Symbol: "BRCA1", Log2FC: "1",
		CellLine: "HeLa", Condition: "untreated",
	})
	require.NoError(t, w.Write(m))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "rowid,chr,start,end,strand"))
	assert.Equal(t, "1,17,100,200,+,ACGT,BRCA1,,1,2,150,101,,,HeLa,untreated,,,", lines[1])
}

func TestCSVWriterNullDerivedFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	m := screen.FormatRow(screen.Row{RowID: 2, Symbol: "TP53", Log2FC: "junk"})
	require.NoError(t, w.Write(m))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSpace(buf.String()), ",")
	// log2fc, fold_change, midpoint, length all empty.
	assert.Equal(t, "", fields[8])
	assert.Equal(t, "", fields[9])
	assert.Equal(t, "", fields[10])
	assert.Equal(t, "", fields[11])
}

func TestCSVEscaping(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	m := screen.FormatRow(screen.Row{RowID: 3, Condition: `6-TG, "low dose"`})
	require.NoError(t, w.Write(m))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), `"6-TG, ""low dose"""`)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}
