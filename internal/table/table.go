package table

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind is the scalar type shared by every cell of a column.
type Kind int

const (
	// Numeric columns hold float64 values. A column with no valid cells is Numeric.
	Numeric Kind = iota
	// Text columns hold arbitrary strings.
	Text
	// Bool columns hold true/false values.
	Bool
)

// String returns the lowercase kind name used in API responses.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Cell is a single value. Valid is false for the missing marker.
//
// Text holds the source lexeme for parsed cells so that values that were
// never modified serialize exactly as they were read.
type Cell struct {
	Number float64
	Text   string
	Bool   bool
	Valid  bool
}

// Missing returns the missing marker.
func Missing() Cell {
	return Cell{}
}

// NumberCell returns a valid numeric cell without a source lexeme.
func NumberCell(v float64) Cell {
	return Cell{Number: v, Valid: true}
}

// TextCell returns a valid text cell.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// BoolCell returns a valid boolean cell without a source lexeme.
func BoolCell(b bool) Cell {
	return Cell{Bool: b, Valid: true}
}

// Format renders the cell for a column of kind k. Missing cells render empty.
func (c Cell) Format(k Kind) string {
	if !c.Valid {
		return ""
	}
	if c.Text != "" || k == Text {
		return c.Text
	}
	switch k {
	case Numeric:
		return FormatNumber(c.Number)
	case Bool:
		if c.Bool {
			return "True"
		}
		return "False"
	}
	return c.Text
}

// FormatNumber renders v with the fewest digits that parse back to v.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// numberKey returns a canonical string for the exact value of a numeric cell.
// Integer lexemes go through big.Int so that values past 2^53, which share a
// float64, stay distinct. Integral floats use the same decimal form.
func numberKey(c Cell) string {
	if s := strings.TrimSpace(c.Text); integerRegex.MatchString(s) {
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return n.String()
		}
	}
	v := c.Number
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		n, _ := big.NewFloat(v).Int(nil)
		return n.String()
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Column is a named sequence of cells of one Kind.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Table is an ordered set of columns with equal length.
type Table struct {
	columns []*Column
	rows    int
}

// New builds a table from columns. It fails if lengths differ or names repeat.
func New(columns ...*Column) (*Table, error) {
	t := &Table{}
	seen := make(map[string]bool, len(columns))
	for i, col := range columns {
		if seen[col.Name] {
			return nil, &DuplicateColumnError{Column: col.Name}
		}
		seen[col.Name] = true
		if i == 0 {
			t.rows = len(col.Cells)
		} else if len(col.Cells) != t.rows {
			return nil, &RaggedColumnError{Column: col.Name, Want: t.rows, Got: len(col.Cells)}
		}
	}
	t.columns = columns
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Columns returns the columns in order. Callers must not resize the cell slices.
func (t *Table) Columns() []*Column {
	return t.columns
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row returns the display strings of row i.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Cells[i].Format(c.Kind)
	}
	return row
}

// Head returns up to n rows as display strings.
func (t *Table) Head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// Clone returns a deep copy so that cleaning one copy never touches the other.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return &Table{columns: cols, rows: t.rows}
}

// Equal reports whether two tables have the same columns, kinds and cell values.
// Source lexemes are ignored; numeric cells compare by exact value.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Cells {
			if !sameValue(c.Kind, c.Cells[r], oc.Cells[r]) {
				return false
			}
		}
	}
	return true
}

func sameValue(k Kind, a, b Cell) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	switch k {
	case Numeric:
		return a.Number == b.Number && numberKey(a) == numberKey(b)
	case Bool:
		return a.Bool == b.Bool
	default:
		return a.Text == b.Text
	}
}
