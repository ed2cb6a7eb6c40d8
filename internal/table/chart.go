package table

import "strconv"

// maxChartSeries is how many numeric columns a chart plots.
const maxChartSeries = 2

// Series is one numeric column as chart values. Missing cells plot as zero
// and are flagged in Missing.
type Series struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Missing []bool    `json:"missing"`
}

// Chart holds bar chart data for the first numeric columns of a table.
type Chart struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
	Max    float64  `json:"max"`
	Min    float64  `json:"min"`
}

// Chart returns the first two numeric columns as bar series labelled by row
// index, or nil when the table has no numeric column.
func (t *Table) Chart() *Chart {
	var series []Series
	for _, c := range t.columns {
		if c.Kind != Numeric {
			continue
		}
		s := Series{Name: c.Name, Values: make([]float64, t.rows), Missing: make([]bool, t.rows)}
		for i, cell := range c.Cells {
			if cell.Valid {
				s.Values[i] = cell.Number
			} else {
				s.Missing[i] = true
			}
		}
		series = append(series, s)
		if len(series) == maxChartSeries {
			break
		}
	}
	if len(series) == 0 {
		return nil
	}

	ch := &Chart{Labels: make([]string, t.rows), Series: series}
	for i := range ch.Labels {
		ch.Labels[i] = strconv.Itoa(i)
	}
	for _, s := range series {
		for _, v := range s.Values {
			ch.Max = max(ch.Max, v)
			ch.Min = min(ch.Min, v)
		}
	}
	return ch
}
