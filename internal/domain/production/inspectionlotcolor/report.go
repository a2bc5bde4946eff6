package inspectionlotcolor

import (
	"context"
	"fmt"
	"time"

	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
	"millerp/internal/domain/reports"
)

// XlsDateFormat is DD/MM/YYYY.
const XlsDateFormat = "02/01/2006"

// ReportQuery bounds the inspection report. Zero values are unset.
type ReportQuery struct {
	DateFrom          time.Time
	DateTo            time.Time
	KanbanID          id.ID
	ProductionOrderID id.ID
}

// UpdatedDateIndex is the index ensured before every report query.
func UpdatedDateIndex() domain.IndexSpec {
	return domain.IndexSpec{
		Name: "ix_" + CollectionName + "__updatedDate",
		Keys: []domain.SortField{{Field: filter.FieldUpdatedDate, Desc: true}},
	}
}

// ReportFilter builds the report predicate. An unset DateFrom defaults to the
// start of today minus windowDays, an unset DateTo to now; a set DateTo is
// inclusive through the end of that day.
func ReportFilter(q ReportQuery, now time.Time, windowDays int) filter.Expr {
	from := q.DateFrom
	if from.IsZero() {
		from = types.StartOfDay(now).AddDate(0, 0, -windowDays)
	}
	to := now
	if !q.DateTo.IsZero() {
		to = types.EndOfDay(q.DateTo)
	}

	var byKanban, byOrder filter.Expr
	if !id.IsNil(q.KanbanID) {
		byKanban = filter.Eq("kanbanId", q.KanbanID)
	}
	if !id.IsNil(q.ProductionOrderID) {
		byOrder = filter.Eq("kanban.productionOrderId", q.ProductionOrderID)
	}

	return filter.AllOf(
		filter.Gte("date", from),
		filter.Lte("date", to),
		filter.NotDeleted(),
		byKanban,
		byOrder,
	)
}

// GetReport returns the inspections of the query window, newest first.
func (s *Service) GetReport(ctx context.Context, q ReportQuery) (items []*InspectionLotColor, err error) {
	defer func(started time.Time) { s.Observe("report", started, err) }(time.Now())

	coll := s.Collection()
	if err := coll.CreateIndexes(ctx, UpdatedDateIndex()); err != nil {
		return nil, fmt.Errorf("ensure report index: %w", err)
	}

	where := ReportFilter(q, s.now().In(s.location), s.windowDays)
	err = s.ReadOnly(ctx, func(ctx context.Context) error {
		var findErr error
		items, findErr = coll.Find(ctx, where, domain.FindOptions{
			Sort: []domain.SortField{{Field: "date", Desc: true, Type: domain.SortTime}},
		})
		return findErr
	})
	if err != nil {
		return nil, fmt.Errorf("get inspection report: %w", err)
	}
	return items, nil
}

// xlsRow is one inspected piece of an inspection.
type xlsRow struct {
	no   int
	doc  *InspectionLotColor
	item Item
	date string
}

func (r xlsRow) productionOrder() string {
	if r.doc.Kanban == nil || r.doc.Kanban.ProductionOrder == nil {
		return ""
	}
	return r.doc.Kanban.ProductionOrder.OrderNo
}

func (r xlsRow) construction() string {
	if r.doc.Kanban == nil {
		return ""
	}
	return r.doc.Kanban.ProductionOrder.Construction()
}

func (r xlsRow) color() string {
	if r.doc.Kanban == nil {
		return ""
	}
	return r.doc.Kanban.SelectedProductionOrderDetail.Color()
}

func (r xlsRow) cart() string {
	if r.doc.Kanban == nil {
		return ""
	}
	return r.doc.Kanban.Cart.CartNumber
}

func (r xlsRow) orderType() string {
	if r.doc.Kanban == nil || r.doc.Kanban.ProductionOrder == nil {
		return ""
	}
	return r.doc.Kanban.ProductionOrder.OrderType.Name
}

// xlsColumns is the column layout of the inspection workbook.
var xlsColumns = []reports.Column[xlsRow]{
	{Name: "No", Type: reports.ColumnNumber, Value: func(r xlsRow) any { return r.no }},
	{Name: "No Order", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.productionOrder() }},
	{Name: "Konstruksi", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.construction() }},
	{Name: "Warna", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.color() }},
	{Name: "No Kereta", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.cart() }},
	{Name: "Jenis Order", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.orderType() }},
	{Name: "Tgl Pemeriksaan", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.date }},
	{Name: "No Pcs", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.item.PcsNo }},
	{Name: "Lot", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.item.Lot }},
	{Name: "Status", Type: reports.ColumnString, Value: func(r xlsRow) any { return r.item.Status }},
}

// GetXls flattens the report into one row per inspected piece.
func (s *Service) GetXls(items []*InspectionLotColor, q ReportQuery) *reports.XlsReport {
	var rows []xlsRow
	for _, doc := range items {
		date := ""
		if !doc.Date.IsZero() {
			date = doc.Date.In(s.location).Format(XlsDateFormat)
		}
		for _, item := range doc.Items {
			rows = append(rows, xlsRow{no: len(rows) + 1, doc: doc, item: item, date: date})
		}
	}
	return reports.Build(XlsFileName(q), xlsColumns, rows)
}

// XlsFileName encodes the requested range in the workbook file name.
func XlsFileName(q ReportQuery) string {
	const base = "Inspection Lot Color Report"
	switch {
	case !q.DateFrom.IsZero() && !q.DateTo.IsZero():
		return fmt.Sprintf("%s %s - %s.xlsx", base, q.DateFrom.Format(XlsDateFormat), q.DateTo.Format(XlsDateFormat))
	case !q.DateTo.IsZero():
		return fmt.Sprintf("%s %s.xlsx", base, q.DateTo.Format(XlsDateFormat))
	case !q.DateFrom.IsZero():
		return fmt.Sprintf("%s %s.xlsx", base, q.DateFrom.Format(XlsDateFormat))
	default:
		return base + ".xlsx"
	}
}
