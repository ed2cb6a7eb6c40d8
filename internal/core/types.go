package core

import (
	"time"

	"github.com/JonMunkholm/datasweeper/internal/table"
)

// UploadFile is one file received in an upload batch.
type UploadFile struct {
	Name string
	Data []byte
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

// FileSummary describes an uploaded file. For a rejected file only Name,
// SizeKB and the error fields are set.
type FileSummary struct {
	ID         string       `json:"id,omitempty"`
	Name       string       `json:"name"`
	Format     string       `json:"format,omitempty"`
	SizeKB     float64      `json:"sizeKB"`
	Rows       int          `json:"rows"`
	Columns    []ColumnInfo `json:"columns,omitempty"`
	Head       [][]string   `json:"head,omitempty"`
	Notice     string       `json:"notice,omitempty"`
	UploadedAt time.Time    `json:"uploadedAt,omitzero"`
	ExpiresAt  time.Time    `json:"expiresAt,omitzero"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Action    string `json:"action,omitempty"`

	// Err is the technical error behind Error.
	Err error `json:"-"`
}

// Failed reports whether the file was rejected.
func (f FileSummary) Failed() bool {
	return f.Err != nil
}

// ColumnNames returns the names from Columns.
func (f FileSummary) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Options are the user's choices for one preview or conversion. The zero
// value converts to CSV with no cleaning and all columns.
type Options struct {
	Clean   table.CleanOptions `json:"clean"`
	Columns []string           `json:"columns,omitempty"`
	Target  table.Format       `json:"target"`
	Chart   bool               `json:"chart"`
}

// PreviewResult is the transformed table as shown before download.
type PreviewResult struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	OutputName        string             `json:"outputName"`
	Target            table.Format       `json:"target"`
	Columns           []ColumnInfo       `json:"columns"`
	Head              [][]string         `json:"head"`
	RowsIn            int                `json:"rowsIn"`
	RowsOut           int                `json:"rowsOut"`
	DuplicatesRemoved int                `json:"duplicatesRemoved"`
	CellsFilled       int                `json:"cellsFilled"`
	Means             map[string]float64 `json:"means,omitempty"`
	Notices           []string           `json:"notices,omitempty"`
	Chart             *table.Chart       `json:"chart,omitempty"`
}

// ConvertResult is a finished conversion ready for download.
type ConvertResult struct {
	Filename string
	MIMEType string
	Data     []byte
	Record   HistoryRecord
}

func columnInfo(t *table.Table) []ColumnInfo {
	cols := t.Columns()
	info := make([]ColumnInfo, len(cols))
	for i, c := range cols {
		missing := 0
		for _, cell := range c.Cells {
			if !cell.Valid {
				missing++
			}
		}
		info[i] = ColumnInfo{Name: c.Name, Kind: c.Kind.String(), Missing: missing}
	}
	return info
}
