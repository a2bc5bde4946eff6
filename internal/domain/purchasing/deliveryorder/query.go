package deliveryorder

import (
	"time"

	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

// Query builds the list predicate of delivery orders. The keyword also
// matches the number of the external purchase order of any item.
func Query(p domain.Paging) filter.Expr {
	var keyword filter.Expr
	if p.Keyword != "" {
		keyword = filter.Or{
			filter.Contains("no", p.Keyword),
			filter.Contains("refNo", p.Keyword),
			filter.Contains("supplier.name", p.Keyword),
			filter.ElemMatch{
				Field: "items",
				Cond:  filter.Contains("purchaseOrderExternal.no", p.Keyword),
			},
		}
	}
	return filter.AllOf(filter.NotDeleted(), keyword, p.Filter)
}

// SupplierUnitQuery selects delivery orders of supplierID with at least one
// fulfillment for a purchase order of unitID.
func SupplierUnitQuery(supplierID, unitID id.ID, keyword string) filter.Expr {
	return filter.AllOf(
		filter.NotDeleted(),
		filter.Eq("supplierId", supplierID),
		filter.ElemMatch{
			Field: "items",
			Cond: filter.ElemMatch{
				Field: "fulfillments",
				Cond:  filter.Eq("purchaseOrder.unitId", unitID),
			},
		},
		filter.Keyword(keyword, "no", "supplier.name", "unit.division", "unit.subDivision", "deliveryOrder.no"),
	)
}

// DataQuery selects delivery orders by number, supplier and supplier DO date.
// Zero values are unset.
type DataQuery struct {
	No         string
	SupplierID id.ID
	DateFrom   time.Time
	DateTo     time.Time
}

// Expr returns the predicate of the first usable parameter combination:
// all four, no with supplier, supplier, no, or the date range alone.
// Reports false when no combination is usable.
func (q DataQuery) Expr() (filter.Expr, bool) {
	hasNo := q.No != ""
	hasSupplier := !id.IsNil(q.SupplierID)
	hasRange := !q.DateFrom.IsZero() && !q.DateTo.IsZero()

	switch {
	case hasNo && hasSupplier && hasRange:
		return filter.AllOf(
			filter.Eq("no", q.No),
			filter.Eq("supplierId", q.SupplierID),
			q.dateRange(),
			filter.NotDeleted(),
		), true
	case hasNo && hasSupplier:
		return filter.AllOf(filter.Eq("no", q.No), filter.Eq("supplierId", q.SupplierID), filter.NotDeleted()), true
	case hasSupplier:
		return filter.AllOf(filter.Eq("supplierId", q.SupplierID), filter.NotDeleted()), true
	case hasNo:
		return filter.AllOf(filter.Eq("no", q.No), filter.NotDeleted()), true
	case hasRange:
		return filter.AllOf(q.dateRange(), filter.NotDeleted()), true
	default:
		return nil, false
	}
}

func (q DataQuery) dateRange() filter.Expr {
	return filter.And{
		filter.Gte("supplierDoDate", q.DateFrom),
		filter.Lte("supplierDoDate", types.EndOfDay(q.DateTo)),
	}
}
