package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that receives extracted tables
const SheetName = "Extracted"

// SheetWriter lays rows out on a worksheet and persists the workbook
type SheetWriter interface {
	// WriteRows writes rows starting at 1-based startRow. An empty row is left blank.
	WriteRows(sheet string, startRow int, rows [][]string) error
	SaveAs(path string) error
	Close() error
}

// ExcelWriter is a SheetWriter backed by excelize
type ExcelWriter struct {
	file *excelize.File
}

var _ SheetWriter = (*ExcelWriter)(nil)

// NewExcelWriter creates a workbook whose default sheet is renamed to sheet
func NewExcelWriter(sheet string) (SheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}
	return &ExcelWriter{file: f}, nil
}

func (w *ExcelWriter) WriteRows(sheet string, startRow int, rows [][]string) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", startRow+i, err)
		}
	}
	return nil
}

func (w *ExcelWriter) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

func (w *ExcelWriter) Close() error {
	return w.file.Close()
}

// WriteWorkbook lays out the Extracted sheet: an optional metadata block of one
// line per row followed by a blank separator row, then the table records.
// It returns the number of sheet rows used.
func WriteWorkbook(w SheetWriter, metadata []string, records [][]string) (int, error) {
	row := 1
	if len(metadata) > 0 {
		block := make([][]string, 0, len(metadata)+1)
		for _, line := range metadata {
			block = append(block, []string{line})
		}
		block = append(block, nil)
		if err := w.WriteRows(SheetName, row, block); err != nil {
			return 0, err
		}
		row += len(block)
	}

	if err := w.WriteRows(SheetName, row, records); err != nil {
		return 0, err
	}
	return row + len(records) - 1, nil
}
