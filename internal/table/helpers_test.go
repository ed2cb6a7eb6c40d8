package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParseCSV(t *testing.T, s string) *Table {
	t.Helper()
	tbl, err := Parse([]byte(s), CSV)
	require.NoError(t, err)
	return tbl
}

func mustSerialize(t *testing.T, tbl *Table, f Format) []byte {
	t.Helper()
	out, err := Serialize(tbl, f)
	require.NoError(t, err)
	return out.Data
}

func column(t *testing.T, tbl *Table, name string) *Column {
	t.Helper()
	c, ok := tbl.Column(name)
	require.True(t, ok, "column %q not found", name)
	return c
}

// formatted returns the display strings of a column.
func formatted(c *Column) []string {
	out := make([]string, len(c.Cells))
	for i, cell := range c.Cells {
		out[i] = cell.Format(c.Kind)
	}
	return out
}
