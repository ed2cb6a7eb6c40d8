package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a tabular file encoding.
type Format int

const (
	CSV Format = iota
	Excel
)

const (
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case Excel:
		return "excel"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MarshalText encodes the format by name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a format name, see ParseFormat.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	if f == Excel {
		return ".xlsx"
	}
	return ".csv"
}

// MIMEType returns the conventional MIME type.
func (f Format) MIMEType() string {
	if f == Excel {
		return mimeXLSX
	}
	return mimeCSV
}

// ParseFormat accepts "csv" or "excel" (also "xlsx"), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "excel", "xlsx":
		return Excel, nil
	}
	return 0, fmt.Errorf("unknown target format %q (want csv or excel)", s)
}

// DetectFormat infers the source format from the file name suffix.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return Excel, nil
	}
	return 0, &UnsupportedFormatError{Extension: ext}
}

// OutputName replaces the extension of name with the one for format.
func OutputName(name string, format Format) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Extension()
}

// Sniff detects the MIME type of data and reports whether it is plausible for
// format. The extension still decides how a file is parsed; a mismatch is
// only surfaced as a notice.
func Sniff(data []byte, format Format) (string, bool) {
	mtype := mimetype.Detect(data)
	switch format {
	case Excel:
		return mtype.String(), mtype.Is(mimeXLSX) || mtype.Is("application/zip")
	default:
		for m := mtype; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), "text/") {
				return mtype.String(), true
			}
		}
		return mtype.String(), len(data) == 0
	}
}
