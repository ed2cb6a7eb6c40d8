package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse reads data in the given format into a table. The first row supplies
// the column names; column kinds are inferred from the remaining rows.
func Parse(data []byte, format Format) (*Table, error) {
	switch format {
	case CSV:
		t, err := parseCSV(data)
		if err != nil {
			return nil, fmt.Errorf("parse CSV: %w", err)
		}
		return t, nil
	case Excel:
		t, err := parseExcel(data)
		if err != nil {
			return nil, fmt.Errorf("parse Excel: %w", err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("parse: %w", &UnsupportedFormatError{Extension: format.String()})
}

// ParseFile detects the format from filename and parses data.
func ParseFile(filename string, data []byte) (*Table, Format, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, 0, err
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, format, err
	}
	return t, format, nil
}

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(strings.NewReader(decodeText(data)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}

	width := len(header)
	raw := make([][]string, width)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > width {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, width, len(record))
		}
		for j := 0; j < width; j++ {
			if j < len(record) {
				raw[j] = append(raw[j], record[j])
			} else {
				raw[j] = append(raw[j], "")
			}
		}
	}

	return buildTable(header, raw, nil)
}

func parseExcel(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	// Data rows wider than the header add unnamed columns.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := make([]string, width)
	copy(header, rows[0])

	raw := make([][]string, width)
	hints := make([][]cellHint, width)
	for i, row := range rows[1:] {
		for j := 0; j < width; j++ {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			raw[j] = append(raw[j], value)
			hints[j] = append(hints[j], excelHint(f, sheet, j+1, i+2, value))
		}
	}

	return buildTable(header, raw, hints)
}

// excelHint reports the stored type of a non-empty cell.
func excelHint(f *excelize.File, sheet string, col, row int, value string) cellHint {
	if value == "" {
		return hintNone
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return hintNone
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return hintNone
	}
	switch typ {
	case excelize.CellTypeBool:
		return hintBool
	case excelize.CellTypeNumber, excelize.CellTypeDate:
		return hintNumber
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return hintString
	}
	return hintNone
}

func buildTable(header []string, raw [][]string, hints [][]cellHint) (*Table, error) {
	names := headerNames(header)
	columns := make([]*Column, len(names))
	for j, name := range names {
		var h []cellHint
		if hints != nil {
			h = hints[j]
		}
		columns[j] = inferColumn(name, raw[j], h)
	}
	return New(columns...)
}
