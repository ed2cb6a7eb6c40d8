package table

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates plain decimal and scientific notation. Hex floats,
// "Inf" and thousands separators are text.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// integerRegex matches numeric lexemes without a fraction or exponent.
var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// missingMarkers are the cell spellings read as missing in addition to the
// empty string.
var missingMarkers = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "#N/A": true, "#N/A N/A": true, "#NA": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"null": true, "NULL": true, "None": true, "<NA>": true,
	"1.#IND": true, "1.#QNAN": true, "-1.#IND": true, "-1.#QNAN": true,
}

// isMissing reports whether a raw cell is the missing marker. Markers match
// exactly, so " " and " NA" are text.
func isMissing(raw string) bool {
	return raw == "" || missingMarkers[raw]
}

// parseNumber parses a numeric lexeme, returning false for anything else.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseBool accepts true/false in any case.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// cellHint carries the stored type of a spreadsheet cell. CSV cells have no hint.
type cellHint int

const (
	hintNone cellHint = iota
	hintNumber
	hintBool
	hintString
)

// inferColumn decides the kind of a column from its raw cells and builds the
// typed cells. hints may be nil; when present it has the same length as raw.
func inferColumn(name string, raw []string, hints []cellHint) *Column {
	kind := Numeric
	sawValue := false
	for i, s := range raw {
		if isMissing(s) {
			continue
		}
		hint := hintNone
		if hints != nil {
			hint = hints[i]
		}
		k := kindOf(s, hint)
		if !sawValue {
			kind = k
			sawValue = true
			continue
		}
		if k != kind {
			kind = Text
			break
		}
	}

	cells := make([]Cell, len(raw))
	for i, s := range raw {
		if isMissing(s) {
			continue
		}
		switch kind {
		case Numeric:
			v, _ := parseNumber(s)
			cells[i] = Cell{Number: v, Text: s, Valid: true}
		case Bool:
			b := boolValue(s, hints, i)
			cells[i] = Cell{Bool: b, Valid: true}
			if hints == nil {
				cells[i].Text = s
			}
		default:
			cells[i] = Cell{Text: s, Valid: true}
		}
	}
	return &Column{Name: name, Kind: kind, Cells: cells}
}

func kindOf(s string, hint cellHint) Kind {
	switch hint {
	case hintString:
		return Text
	case hintBool:
		return Bool
	case hintNumber:
		if _, ok := parseNumber(s); ok {
			return Numeric
		}
		return Text
	}
	if _, ok := parseNumber(s); ok {
		return Numeric
	}
	if _, ok := parseBool(s); ok {
		return Bool
	}
	return Text
}

// boolValue reads a bool cell. Spreadsheets store booleans as 1/0.
func boolValue(s string, hints []cellHint, i int) bool {
	if hints != nil && hints[i] == hintBool {
		v := strings.TrimSpace(s)
		return v == "1" || strings.EqualFold(v, "true")
	}
	b, _ := parseBool(s)
	return b
}

// headerNames makes header cells usable as unique column names: blanks become
// "Unnamed: i" and repeats get ".1", ".2" suffixes.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if used[name] {
			base := name
			for n := 1; used[name]; n++ {
				name = base + "." + strconv.Itoa(n)
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}
