// Package product holds the Product master document referenced by
// lot machines and purchase order items.
package product

import "millerp/internal/core/entity"

// CollectionName is the store collection of products.
const CollectionName = "products"

// Product is a purchasable or producible material.
type Product struct {
	entity.BaseDocument

	Code string `json:"code"`
	Name string `json:"name"`
	UOM  string `json:"uom,omitempty"`
}

// New creates an empty Product.
func New() *Product {
	return &Product{}
}
