package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"docextract/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

const (
	sectionText  = "text"
	sectionTable = "table"
	sectionForm  = "form"
)

// columns defines the CSV header row.
var columns = []string{"Section", "Table", "Cell", "Key", "Value"}

// Writer wraps csv.Writer for exporting extraction results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResult writes one row per text line, table cell and form field.
func (w *Writer) WriteResult(result *domain.ExtractedResult) error {
	for _, line := range textLines(result.Text) {
		if err := w.csv.Write([]string{sectionText, "", "", "", line}); err != nil {
			return err
		}
	}

	for i, table := range result.Tables {
		for j, cell := range table {
			row := []string{sectionTable, strconv.Itoa(i + 1), strconv.Itoa(j + 1), "", cell}
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}

	for _, key := range sortedKeys(result.FormFields) {
		if err := w.csv.Write([]string{sectionForm, "", "", key, result.FormFields[key]}); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete CSV document, BOM included, for result.
func WriteCSV(out io.Writer, result *domain.ExtractedResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResult(result); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
