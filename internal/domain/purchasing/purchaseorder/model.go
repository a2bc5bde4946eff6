// Package purchaseorder holds the internal and external purchase orders
// that delivery orders fulfil.
package purchaseorder

import (
	"time"

	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/core/types"
)

const (
	// CollectionName is the store collection of internal purchase orders.
	CollectionName = "purchase_orders"
	// ExternalCollectionName is the store collection of external purchase orders.
	ExternalCollectionName = "purchase_order_externals"
)

// Unit is the requesting unit of a purchase order.
type Unit struct {
	ID          id.ID  `json:"_id"`
	Code        string `json:"code,omitempty"`
	Division    string `json:"division"`
	SubDivision string `json:"subDivision"`
}

// ProductRef is the product snapshot of an order item.
type ProductRef struct {
	ID   id.ID  `json:"_id"`
	Code string `json:"code"`
	Name string `json:"name"`
	UOM  string `json:"uom,omitempty"`
}

// Fulfillment records the quantity one delivery order brought for an item.
type Fulfillment struct {
	DeliveryOrderNo   string         `json:"deliveryOrderNo"`
	DeliveredQuantity types.Quantity `json:"deliveredQuantity"`
	DeliveryOrderDate time.Time      `json:"deliveryOrderDate"`
	SupplierDoDate    time.Time      `json:"supplierDoDate"`
}

// Item is one ordered product of a purchase order.
type Item struct {
	Product             ProductRef     `json:"product"`
	DealQuantity        types.Quantity `json:"dealQuantity"`
	RealizationQuantity types.Quantity `json:"realizationQuantity"`
	Fulfillments        []Fulfillment  `json:"fulfillments"`
	IsClosed            bool           `json:"isClosed"`
}

// PurchaseOrder is an internal purchase request of a unit.
type PurchaseOrder struct {
	entity.BaseDocument

	No         string `json:"no"`
	RefNo      string `json:"refNo"`
	UnitID     id.ID  `json:"unitId"`
	Unit       Unit   `json:"unit"`
	SupplierID id.ID  `json:"supplierId"`
	Items      []Item `json:"items"`
	IsClosed   bool   `json:"isClosed"`
}

// New creates an empty PurchaseOrder.
func New() *PurchaseOrder {
	return &PurchaseOrder{}
}

// PurchaseOrderExternal groups purchase orders sent to one supplier.
// Items are snapshots of the referenced purchase orders.
type PurchaseOrderExternal struct {
	entity.BaseDocument

	No         string           `json:"no"`
	RefNo      string           `json:"refNo"`
	SupplierID id.ID            `json:"supplierId"`
	Items      []*PurchaseOrder `json:"items"`
	IsClosed   bool             `json:"isClosed"`
}

// NewExternal creates an empty PurchaseOrderExternal.
func NewExternal() *PurchaseOrderExternal {
	return &PurchaseOrderExternal{}
}
