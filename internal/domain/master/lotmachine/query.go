package lotmachine

import (
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

var searchFields = []string{"lot", "product.name", "machine.name"}

// Query builds the list predicate of lot machines.
func Query(p domain.Paging) filter.Expr {
	return filter.AllOf(
		filter.NotDeleted(),
		filter.Keyword(p.Keyword, searchFields...),
		p.Filter,
	)
}
