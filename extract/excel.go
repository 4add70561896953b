package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/altairlabs/platformkit/types"
)

// Workbook is a read-only view over an Excel workbook loaded from
// memory.
type Workbook struct {
	f *excelize.File
}

// OpenWorkbook parses workbook content. Close the workbook when done.
func OpenWorkbook(content []byte) (*Workbook, error) {
	if len(content) == 0 {
		return nil, types.NewError(types.ErrInputValidation, "workbook content cannot be empty")
	}
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, types.NewError(types.ErrInputValidation, "failed to open workbook").WithCause(err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the underlying file resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Rows returns the cell grid of a sheet. Trailing empty cells are
// omitted per row, matching the workbook's stored extent.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Records interprets the first row of a sheet as a header and returns
// the remaining rows as column-keyed records. Short rows yield empty
// values for the missing columns.
func (w *Workbook) Records(sheet string) ([]map[string]string, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}
