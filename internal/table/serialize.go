package table

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by Serialize.
const SheetName = "Sheet1"

// Output is a serialized table.
type Output struct {
	Data      []byte
	Extension string
	MIMEType  string
}

// Serialize encodes t with a header row and no index column.
func Serialize(t *Table, format Format) (*Output, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case CSV:
		data, err = writeCSV(t)
	case Excel:
		data, err = writeExcel(t)
	default:
		return nil, &UnsupportedFormatError{Extension: format.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", format, err)
	}
	return &Output{Data: data, Extension: format.Extension(), MIMEType: format.MIMEType()}, nil
}

func writeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, err
	}
	for i := 0; i < t.rows; i++ {
		row := t.Row(i)
		// A lone empty field would be written as a blank line, which readers skip.
		if len(row) == 1 && row[0] == "" {
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeExcel(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(t.columns))
	for j, c := range t.columns {
		header[j] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for i := 0; i < t.rows; i++ {
		values := make([]interface{}, len(t.columns))
		for j, c := range t.columns {
			values[j] = excelValue(c.Kind, c.Cells[i])
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(axis, values); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// excelValue maps a cell to the value type excelize stores natively.
func excelValue(k Kind, c Cell) interface{} {
	if !c.Valid {
		return nil
	}
	switch k {
	case Numeric:
		return c.Number
	case Bool:
		return c.Bool
	default:
		return c.Text
	}
}
