package purchaseorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millerp/internal/core/id"
	"millerp/internal/core/types"
)

func order(deals ...int64) (*PurchaseOrder, []id.ID) {
	po := &PurchaseOrder{No: "PO-1"}
	products := make([]id.ID, 0, len(deals))
	for _, deal := range deals {
		pid := id.New()
		products = append(products, pid)
		po.Items = append(po.Items, Item{
			Product:      ProductRef{ID: pid, Code: "P"},
			DealQuantity: types.NewQuantity(deal),
		})
	}
	return po, products
}

func delivered(qty int64) Fulfillment {
	return Fulfillment{
		DeliveryOrderNo:   "DO-1",
		DeliveredQuantity: types.NewQuantity(qty),
		DeliveryOrderDate: time.Now(),
		SupplierDoDate:    time.Now(),
	}
}

func TestApplyFulfillment(t *testing.T) {
	t.Run("full delivery closes item and order", func(t *testing.T) {
		po, products := order(100)
		require.True(t, po.ApplyFulfillment(products[0], delivered(100)))
		po.Recompute()

		assert.True(t, types.NewQuantity(100).Equal(po.Items[0].RealizationQuantity))
		assert.True(t, po.Items[0].IsClosed)
		assert.True(t, po.IsClosed)
	})

	t.Run("partial deliveries accumulate", func(t *testing.T) {
		po, products := order(100)
		po.ApplyFulfillment(products[0], delivered(40))
		po.Recompute()
		assert.False(t, po.Items[0].IsClosed)
		assert.False(t, po.IsClosed)

		po.ApplyFulfillment(products[0], delivered(60))
		po.Recompute()
		assert.True(t, types.NewQuantity(100).Equal(po.Items[0].RealizationQuantity))
		assert.Len(t, po.Items[0].Fulfillments, 2)
		assert.True(t, po.IsClosed)
	})

	t.Run("order stays open while any item is open", func(t *testing.T) {
		po, products := order(10, 20)
		po.ApplyFulfillment(products[0], delivered(10))
		po.Recompute()
		assert.True(t, po.Items[0].IsClosed)
		assert.False(t, po.IsClosed)
	})

	t.Run("unknown product", func(t *testing.T) {
		po, _ := order(10)
		assert.False(t, po.ApplyFulfillment(id.New(), delivered(10)))
		assert.Empty(t, po.Items[0].Fulfillments)
	})

	t.Run("order without items is open", func(t *testing.T) {
		po := &PurchaseOrder{IsClosed: true}
		po.Recompute()
		assert.False(t, po.IsClosed)
	})
}

func TestExternal_Refresh(t *testing.T) {
	closed := &PurchaseOrder{IsClosed: true}
	closed.ID = id.New()
	open := &PurchaseOrder{}
	open.ID = id.New()

	poe := &PurchaseOrderExternal{No: "POE-1", Items: []*PurchaseOrder{{}, {}}}
	poe.Refresh([]*PurchaseOrder{closed, open})
	assert.False(t, poe.IsClosed)
	assert.Equal(t, []id.ID{closed.ID, open.ID}, poe.OrderIDs())

	open.IsClosed = true
	poe.Refresh([]*PurchaseOrder{closed, open})
	assert.True(t, poe.IsClosed)

	poe.Refresh(nil)
	assert.False(t, poe.IsClosed)
}
