package table

// Project returns a table with exactly the named columns, in the given order.
// The result shares cells with t; clone first if both will be mutated.
func (t *Table) Project(names []string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	picked := make(map[string]bool, len(names))
	for _, name := range names {
		if picked[name] {
			return nil, &DuplicateColumnError{Column: name, Selection: true}
		}
		c, ok := t.Column(name)
		if !ok {
			return nil, &UnknownColumnError{Column: name, Available: t.ColumnNames()}
		}
		picked[name] = true
		cols = append(cols, c)
	}
	return &Table{columns: cols, rows: t.rows}, nil
}
