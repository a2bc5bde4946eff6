// Package reports provides tabular report types shared by managers
// and the workbook writer.
package reports

import (
	"context"
	"io"
)

// ColumnType is the declared cell type of a column.
type ColumnType string

const (
	ColumnNumber ColumnType = "number"
	ColumnString ColumnType = "string"
)

// Column is one output column: header, declared type and the extractor
// producing the cell of a source row.
type Column[R any] struct {
	Name  string
	Type  ColumnType
	Value func(row R) any
}

// Header describes a rendered column.
type Header struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// XlsReport is a flat table ready to be written as a workbook.
type XlsReport struct {
	// Name is the file name, e.g. "Inspection Lot Color Report.xlsx"
	Name    string   `json:"name"`
	Columns []Header `json:"columns"`
	Rows    [][]any  `json:"data"`
}

// Build renders rows through the ordered columns.
func Build[R any](name string, columns []Column[R], rows []R) *XlsReport {
	report := &XlsReport{
		Name:    name,
		Columns: make([]Header, len(columns)),
		Rows:    make([][]any, 0, len(rows)),
	}
	for i, c := range columns {
		report.Columns[i] = Header{Name: c.Name, Type: c.Type}
	}
	for _, row := range rows {
		cells := make([]any, len(columns))
		for i, c := range columns {
			cells[i] = c.Value(row)
		}
		report.Rows = append(report.Rows, cells)
	}
	return report
}

// Record returns row i as a header -> cell map.
func (r *XlsReport) Record(i int) map[string]any {
	out := make(map[string]any, len(r.Columns))
	for j, h := range r.Columns {
		out[h.Name] = r.Rows[i][j]
	}
	return out
}

// Writer encodes a report into a file format.
type Writer interface {
	Write(ctx context.Context, w io.Writer, report *XlsReport) error
}
