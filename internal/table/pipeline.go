package table

import "fmt"

// Request carries everything one conversion needs. Table, when set, is used
// instead of parsing Data and is cloned first, so the caller's copy is never
// modified.
type Request struct {
	Filename string
	Data     []byte
	Table    *Table

	Clean   CleanOptions
	Columns []string
	Target  Format
	Chart   bool
}

// Result is the outcome of a conversion.
type Result struct {
	Source Format
	Target Format
	Table  *Table

	RowsIn            int
	DuplicatesRemoved int
	Fill              *FillReport
	Chart             *Chart

	// Set by Run only.
	Output   *Output
	Filename string
}

// Prepare parses (or clones) the table and applies cleaning, projection and
// chart extraction, in that order. It does not serialize.
func Prepare(req Request) (*Result, error) {
	source, err := DetectFormat(req.Filename)
	if err != nil {
		return nil, err
	}

	t := req.Table
	if t == nil {
		t, err = Parse(req.Data, source)
		if err != nil {
			return nil, err
		}
	} else {
		t = t.Clone()
	}

	res := &Result{Source: source, Target: req.Target, RowsIn: t.NumRows()}

	if req.Clean.RemoveDuplicates {
		res.DuplicatesRemoved = t.RemoveDuplicates()
	}
	if req.Clean.FillMissingNumeric {
		report := t.FillMissingNumeric()
		res.Fill = &report
	}
	if len(req.Columns) > 0 {
		t, err = t.Project(req.Columns)
		if err != nil {
			return nil, err
		}
	}
	if req.Chart {
		res.Chart = t.Chart()
	}

	res.Table = t
	return res, nil
}

// Run performs Prepare and serializes the result to the target format.
func Run(req Request) (*Result, error) {
	res, err := Prepare(req)
	if err != nil {
		return nil, err
	}
	out, err := Serialize(res.Table, req.Target)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", req.Filename, err)
	}
	res.Output = out
	res.Filename = OutputName(req.Filename, req.Target)
	return res, nil
}
