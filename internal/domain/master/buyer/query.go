package buyer

import (
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

// searchFields are matched by the keyword of a list request.
var searchFields = []string{"code", "name"}

// Query builds the list predicate: non-deleted buyers, optionally
// narrowed by keyword and the caller's structured filter.
func Query(p domain.Paging) filter.Expr {
	return filter.AllOf(
		filter.NotDeleted(),
		filter.Keyword(p.Keyword, searchFields...),
		p.Filter,
	)
}
