package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/domain"
)

func sampleResult() *domain.ExtractedResult {
	return &domain.ExtractedResult{
		Text:       "Invoice 42\nTotal: 10.00",
		Tables:     [][]string{{"Item", "Qty"}, {"Widget"}},
		FormFields: map[string]string{"Total": "10.00", "Name": "Alice"},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Table", "Cell", "Key", "Value"}, row)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 8)

	assert.Equal(t, []string{"text", "", "", "", "Invoice 42"}, rows[1])
	assert.Equal(t, []string{"text", "", "", "", "Total: 10.00"}, rows[2])
	assert.Equal(t, []string{"table", "1", "1", "", "Item"}, rows[3])
	assert.Equal(t, []string{"table", "1", "2", "", "Qty"}, rows[4])
	assert.Equal(t, []string{"table", "2", "1", "", "Widget"}, rows[5])
	// form fields sorted by key
	assert.Equal(t, []string{"form", "", "", "Name", "Alice"}, rows[6])
	assert.Equal(t, []string{"form", "", "", "Total", "10.00"}, rows[7])
}

func TestWriteCSV_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &domain.ExtractedResult{}))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
