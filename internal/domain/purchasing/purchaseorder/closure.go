package purchaseorder

import (
	"millerp/internal/core/id"
	"millerp/internal/core/types"
)

// Recompute derives realization from the fulfillments and closes the item
// when realization reaches the deal quantity.
func (it *Item) Recompute() {
	total := types.Zero()
	for _, f := range it.Fulfillments {
		total = total.Add(f.DeliveredQuantity)
	}
	it.RealizationQuantity = total
	it.IsClosed = total.Equal(it.DealQuantity)
}

// ApplyFulfillment appends f to the first item of productID and recomputes it.
// Reports false when the order has no such item.
func (po *PurchaseOrder) ApplyFulfillment(productID id.ID, f Fulfillment) bool {
	for i := range po.Items {
		item := &po.Items[i]
		if item.Product.ID != productID {
			continue
		}
		item.Fulfillments = append(item.Fulfillments, f)
		item.Recompute()
		return true
	}
	return false
}

// Recompute closes the order when it has items and all of them are closed.
func (po *PurchaseOrder) Recompute() {
	po.IsClosed = len(po.Items) > 0
	for _, item := range po.Items {
		if !item.IsClosed {
			po.IsClosed = false
			return
		}
	}
}

// OrderIDs returns the ids of the referenced purchase orders in item order.
func (e *PurchaseOrderExternal) OrderIDs() []id.ID {
	ids := make([]id.ID, 0, len(e.Items))
	for _, po := range e.Items {
		if po != nil {
			ids = append(ids, po.ID)
		}
	}
	return ids
}

// Refresh replaces the snapshots with orders and recomputes the closure flag:
// closed when there is at least one order and every order is closed.
func (e *PurchaseOrderExternal) Refresh(orders []*PurchaseOrder) {
	e.Items = orders
	e.IsClosed = len(orders) > 0
	for _, po := range orders {
		if !po.IsClosed {
			e.IsClosed = false
			return
		}
	}
}
