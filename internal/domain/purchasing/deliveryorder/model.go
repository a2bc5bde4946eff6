// Package deliveryorder manages supplier delivery orders and propagates
// their fulfillments to purchase orders.
package deliveryorder

import (
	"time"

	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain/purchasing/purchaseorder"
)

// CollectionName is the store collection of delivery orders.
const CollectionName = "delivery_orders"

// Supplier is the supplier snapshot of a delivery order.
type Supplier struct {
	ID   id.ID  `json:"_id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Fulfillment is the quantity delivered for one purchase order item.
type Fulfillment struct {
	PurchaseOrderID id.ID                        `json:"purchaseOrderId"`
	PurchaseOrder   *purchaseorder.PurchaseOrder `json:"purchaseOrder,omitempty"`
	ProductID       id.ID                        `json:"productId"`
	Product         purchaseorder.ProductRef     `json:"product"`

	PurchaseOrderQuantity types.Quantity `json:"purchaseOrderQuantity"`
	PurchaseOrderUom      string         `json:"purchaseOrderUom,omitempty"`
	DeliveredQuantity     types.Quantity `json:"deliveredQuantity"`
	Remark                string         `json:"remark,omitempty"`
	IsPosted              bool           `json:"isPosted"`
}

// Item groups the fulfillments of one external purchase order.
type Item struct {
	PurchaseOrderExternalID id.ID                                `json:"purchaseOrderExternalId"`
	PurchaseOrderExternal   *purchaseorder.PurchaseOrderExternal `json:"purchaseOrderExternal,omitempty"`
	Fulfillments            []Fulfillment                        `json:"fulfillments"`
}

// DeliveryOrder is a supplier delivery note (surat jalan).
// Quantities and references are fixed once posted.
type DeliveryOrder struct {
	entity.BaseDocument
	entity.Posting

	No             string    `json:"no"`
	RefNo          string    `json:"refNo"`
	Date           time.Time `json:"date"`
	SupplierDoDate time.Time `json:"supplierDoDate"`
	SupplierID     id.ID     `json:"supplierId"`
	Supplier       *Supplier `json:"supplier,omitempty"`
	Remark         string    `json:"remark,omitempty"`
	Items          []Item    `json:"items"`
}

// New creates an empty DeliveryOrder.
func New() *DeliveryOrder {
	return &DeliveryOrder{}
}

// PurchaseOrderIDs returns the distinct purchase orders the fulfillments refer to.
func (d *DeliveryOrder) PurchaseOrderIDs() []id.ID {
	var ids []id.ID
	for _, item := range d.Items {
		for _, f := range item.Fulfillments {
			ids = append(ids, f.PurchaseOrderID)
		}
	}
	return id.Distinct(ids...)
}

// ExternalIDs returns the distinct external purchase orders of the items.
func (d *DeliveryOrder) ExternalIDs() []id.ID {
	ids := make([]id.ID, 0, len(d.Items))
	for _, item := range d.Items {
		ids = append(ids, item.PurchaseOrderExternalID)
	}
	return id.Distinct(ids...)
}

// FulfillmentsOf returns the fulfillments that refer to purchase order poID, in document order.
func (d *DeliveryOrder) FulfillmentsOf(poID id.ID) []Fulfillment {
	var out []Fulfillment
	for _, item := range d.Items {
		for _, f := range item.Fulfillments {
			if f.PurchaseOrderID == poID {
				out = append(out, f)
			}
		}
	}
	return out
}

// markPosted sets the posted flag on the document and each fulfillment.
func (d *DeliveryOrder) markPosted() {
	d.MarkPosted()
	for i := range d.Items {
		for j := range d.Items[i].Fulfillments {
			d.Items[i].Fulfillments[j].IsPosted = true
		}
	}
}
