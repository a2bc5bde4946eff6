package deliveryorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

func TestQuery(t *testing.T) {
	assert.Equal(t, filter.And{filter.NotDeleted()}, Query(domain.Paging{}))

	q := Query(domain.Paging{Keyword: "sj"})
	assert.Equal(t, filter.And{
		filter.NotDeleted(),
		filter.Or{
			filter.Contains("no", "sj"),
			filter.Contains("refNo", "sj"),
			filter.Contains("supplier.name", "sj"),
			filter.ElemMatch{Field: "items", Cond: filter.Contains("purchaseOrderExternal.no", "sj")},
		},
	}, q)

	posted := filter.Eq("isPosted", true)
	q = Query(domain.Paging{Filter: posted})
	assert.Equal(t, filter.And{filter.NotDeleted(), posted}, q)
}

func TestSupplierUnitQuery(t *testing.T) {
	supplier, unit := id.New(), id.New()

	q, ok := SupplierUnitQuery(supplier, unit, "").(filter.And)
	require.True(t, ok)
	require.Len(t, q, 3)
	assert.Equal(t, filter.ElemMatch{
		Field: "items",
		Cond: filter.ElemMatch{
			Field: "fulfillments",
			Cond:  filter.Eq("purchaseOrder.unitId", unit),
		},
	}, q[2])

	q, ok = SupplierUnitQuery(supplier, unit, "spinning").(filter.And)
	require.True(t, ok)
	require.Len(t, q, 4)
	assert.Len(t, q[3], 5)
}
