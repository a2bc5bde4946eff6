// Package xlsx writes reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"millerp/internal/domain/reports"
)

// DefaultSheet is the name of the only sheet of a written workbook.
const DefaultSheet = "Report"

// Writer implements reports.Writer with excelize.
type Writer struct {
	sheet string
}

var _ reports.Writer = (*Writer)(nil)

// NewWriter creates a writer using sheet as the sheet name (DefaultSheet when empty).
func NewWriter(sheet string) *Writer {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Writer{sheet: sheet}
}

// Write renders the header row followed by one row per report row.
// Number columns are written as numbers, every other column as text.
func (w *Writer) Write(ctx context.Context, out io.Writer, report *reports.XlsReport) error {
	f, err := w.Build(ctx, report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build renders the report into a new workbook. The caller closes it.
func (w *Writer) Build(ctx context.Context, report *reports.XlsReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range report.Columns {
		if err := w.set(f, i+1, 1, h.Name); err != nil {
			f.Close()
			return nil, err
		}
	}

	for r, row := range report.Rows {
		if r%500 == 0 {
			if err := ctx.Err(); err != nil {
				f.Close()
				return nil, err
			}
		}
		for c, value := range row {
			if c >= len(report.Columns) {
				break
			}
			if err := w.set(f, c+1, r+2, cellValue(report.Columns[c].Type, value)); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

func (w *Writer) set(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(w.sheet, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}

func cellValue(t reports.ColumnType, value any) any {
	if value == nil {
		return ""
	}
	if t == reports.ColumnNumber {
		return value
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
