package table

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// CleanOptions selects the cleaning operations. They always run in the order
// RemoveDuplicates, then FillMissingNumeric.
type CleanOptions struct {
	RemoveDuplicates   bool `json:"removeDuplicates"`
	FillMissingNumeric bool `json:"fillMissingNumeric"`
}

// Any reports whether at least one operation is selected.
func (o CleanOptions) Any() bool {
	return o.RemoveDuplicates || o.FillMissingNumeric
}

// RemoveDuplicates drops rows identical to an earlier row, keeping the first
// occurrence and the order of the rows kept. Missing cells compare equal to
// each other and numeric cells compare by exact value, including integers too
// large for a float64. It returns the number of rows removed.
func (t *Table) RemoveDuplicates() int {
	seen := make(map[string]struct{}, t.rows)
	keep := make([]int, 0, t.rows)
	var b strings.Builder
	for i := 0; i < t.rows; i++ {
		b.Reset()
		t.writeRowKey(&b, i)
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	removed := t.rows - len(keep)
	if removed == 0 {
		return 0
	}
	for _, c := range t.columns {
		cells := make([]Cell, len(keep))
		for j, i := range keep {
			cells[j] = c.Cells[i]
		}
		c.Cells = cells
	}
	t.rows = len(keep)
	return removed
}

// writeRowKey encodes row i so that two rows share a key only when every cell
// holds the same value. Each field is length-prefixed.
func (t *Table) writeRowKey(b *strings.Builder, i int) {
	for _, c := range t.columns {
		cell := c.Cells[i]
		if !cell.Valid {
			b.WriteString("-|")
			continue
		}
		var v string
		switch c.Kind {
		case Numeric:
			v = numberKey(cell)
		case Bool:
			v = strconv.FormatBool(cell.Bool)
		default:
			v = cell.Text
		}
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
		b.WriteByte('|')
	}
}

// FillReport describes what FillMissingNumeric changed.
type FillReport struct {
	// Filled maps a column name to the number of cells replaced by its mean.
	Filled map[string]int `json:"filled"`
	// Means maps a filled column name to the value used.
	Means map[string]float64 `json:"means"`
	// Empty lists numeric columns with no values, which are left missing.
	Empty []string `json:"empty,omitempty"`
}

// Cells returns the total number of cells filled.
func (r FillReport) Cells() int {
	n := 0
	for _, c := range r.Filled {
		n += c
	}
	return n
}

// Err returns one EmptyNumericColumnError per empty column, joined, or nil.
func (r FillReport) Err() error {
	errs := make([]error, len(r.Empty))
	for i, name := range r.Empty {
		errs[i] = &EmptyNumericColumnError{Column: name}
	}
	return errors.Join(errs...)
}

// FillMissingNumeric replaces missing cells of numeric columns with the mean
// of the column's valid cells. The mean is computed once per column before
// any cell is replaced. Non-numeric columns are not touched. A numeric column
// without valid cells has no mean: it is left as is and listed in Empty.
func (t *Table) FillMissingNumeric() FillReport {
	report := FillReport{Filled: map[string]int{}, Means: map[string]float64{}}
	for _, c := range t.columns {
		if c.Kind != Numeric {
			continue
		}
		mean, ok := columnMean(c)
		if !ok {
			if t.rows > 0 {
				report.Empty = append(report.Empty, c.Name)
			}
			continue
		}
		filled := 0
		for i := range c.Cells {
			if !c.Cells[i].Valid {
				c.Cells[i] = NumberCell(mean)
				filled++
			}
		}
		if filled > 0 {
			report.Filled[c.Name] = filled
			report.Means[c.Name] = mean
		}
	}
	return report
}

// columnMean averages the valid cells using a running mean, which stays
// finite for large magnitudes where a plain sum would overflow.
func columnMean(c *Column) (float64, bool) {
	mean, n := 0.0, 0
	for _, cell := range c.Cells {
		if !cell.Valid {
			continue
		}
		n++
		mean += (cell.Number - mean) / float64(n)
	}
	if n == 0 || math.IsNaN(mean) {
		return 0, false
	}
	return mean, true
}
