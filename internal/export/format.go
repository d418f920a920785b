// Package export renders extraction results as downloadable CSV or Excel files.
package export

import (
	"fmt"
	"io"
	"strings"

	"docextract/internal/domain"
)

// Format identifies an output representation of an ExtractedResult.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a requested format. An empty string selects FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidRequest, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename builds a download filename for the given base name.
func (f Format) Filename(base string) string {
	return fmt.Sprintf("%s.%s", base, f)
}

// Write renders result to w in a file format. FormatJSON is not a file format and
// is rejected.
func Write(w io.Writer, f Format, result *domain.ExtractedResult) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result)
	default:
		return fmt.Errorf("export: format %q is not a file format", f)
	}
}
