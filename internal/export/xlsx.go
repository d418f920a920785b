package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"docextract/internal/domain"
)

const (
	textSheet = "Text"
	formSheet = "Form Fields"
)

// WriteXLSX writes result as an Excel workbook: a Text sheet with one line per
// row, a Form Fields sheet sorted by key and one sheet per table.
func WriteXLSX(w io.Writer, result *domain.ExtractedResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), textSheet); err != nil {
		return fmt.Errorf("renaming default sheet: %w", err)
	}
	if err := writeColumn(f, textSheet, "Line", textLines(result.Text)); err != nil {
		return err
	}

	if _, err := f.NewSheet(formSheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", formSheet, err)
	}
	if err := f.SetSheetRow(formSheet, "A1", &[]interface{}{"Key", "Value"}); err != nil {
		return err
	}
	for i, key := range sortedKeys(result.FormFields) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(formSheet, cell, &[]interface{}{key, result.FormFields[key]}); err != nil {
			return fmt.Errorf("writing form field %q: %w", key, err)
		}
	}

	for i, table := range result.Tables {
		name := fmt.Sprintf("Table %d", i+1)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if err := writeColumn(f, name, "Cell", table); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// writeColumn writes header into A1 and values below it, one per row.
func writeColumn(f *excelize.File, sheet, header string, values []string) error {
	if err := f.SetCellStr(sheet, "A1", header); err != nil {
		return err
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func textLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
