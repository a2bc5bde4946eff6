// Package buyer manages the Buyer master catalog.
package buyer

import (
	"millerp/internal/core/entity"
	"millerp/internal/core/types"
)

// CollectionName is the store collection of buyers.
const CollectionName = "buyers"

// Buyer is a customer of finished goods.
type Buyer struct {
	entity.BaseDocument

	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Contact string `json:"contact"`

	// Tempo is the payment term in days
	Tempo types.NumericText `json:"tempo"`

	Type string `json:"type"`
	NPWP string `json:"NPWP"`
}

// New creates an empty Buyer.
func New() *Buyer {
	return &Buyer{}
}
