package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is matched by errors.Is for any *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnknownColumn is matched by errors.Is for any *UnknownColumnError.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptyNumericColumn is matched by errors.Is for any *EmptyNumericColumnError.
	ErrEmptyNumericColumn = errors.New("empty numeric column")
	// ErrDuplicateColumn is matched by errors.Is for any *DuplicateColumnError.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")
)

// UnsupportedFormatError is returned when a file extension is neither .csv nor .xlsx.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return "unsupported format: file has no extension"
	}
	return fmt.Sprintf("unsupported format: extension=%q", e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// UnknownColumnError is returned by Project for a name the table does not have.
type UnknownColumnError struct {
	Column    string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

func (e *UnknownColumnError) Is(target error) bool {
	return target == ErrUnknownColumn
}

// EmptyNumericColumnError reports a numeric column whose mean is undefined
// because it has no valid values. Its cells are left missing.
type EmptyNumericColumnError struct {
	Column string
}

func (e *EmptyNumericColumnError) Error() string {
	return fmt.Sprintf("empty numeric column %q: no values to average, cells left missing", e.Column)
}

func (e *EmptyNumericColumnError) Is(target error) bool {
	return target == ErrEmptyNumericColumn
}

// DuplicateColumnError is returned when a column name appears twice, either
// in New or in a Project selection.
type DuplicateColumnError struct {
	Column    string
	Selection bool
}

func (e *DuplicateColumnError) Error() string {
	if e.Selection {
		return fmt.Sprintf("column %q selected twice", e.Column)
	}
	return fmt.Sprintf("duplicate column %q", e.Column)
}

func (e *DuplicateColumnError) Is(target error) bool {
	return target == ErrDuplicateColumn
}

// RaggedColumnError is returned by New when column lengths differ.
type RaggedColumnError struct {
	Column string
	Want   int
	Got    int
}

func (e *RaggedColumnError) Error() string {
	return fmt.Sprintf("column %q has %d cells, want %d", e.Column, e.Got, e.Want)
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}
