// Package table implements the conversion pipeline for uploaded tabular files.
//
// A [Table] is an ordered set of named, typed columns of equal length. Column
// types are decided once, at parse time, and never re-inferred:
//
//	t, err := table.Parse(data, table.CSV)
//	removed := t.RemoveDuplicates()
//	report := t.FillMissingNumeric()
//	t, err = t.Project([]string{"region", "amount"})
//	out, err := table.Serialize(t, table.Excel)
//
// [Run] applies the same steps in a fixed order (dedupe, fill, project,
// serialize) from an explicit [Request] and returns a [Result].
package table
