package inspectionlotcolor

import (
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

var searchFields = []string{
	"kanban.productionOrder.orderNo",
	"kanban.selectedProductionOrderDetail.colorRequest",
	"kanban.cart.cartNumber",
	"kanban.productionOrder.orderType.name",
}

// Query builds the list predicate of inspections.
func Query(p domain.Paging) filter.Expr {
	return filter.AllOf(
		filter.NotDeleted(),
		filter.Keyword(p.Keyword, searchFields...),
		p.Filter,
	)
}
