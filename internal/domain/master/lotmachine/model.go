// Package lotmachine manages the spinning lot settings of a product on a machine.
package lotmachine

import (
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain/master/machine"
	"millerp/internal/domain/master/product"
)

// CollectionName is the store collection of lot machines.
const CollectionName = "lot_machines"

// LotMachine binds a lot of a product to a machine with its settings.
type LotMachine struct {
	entity.BaseDocument

	ProductID id.ID            `json:"productId"`
	Product   *product.Product `json:"product,omitempty"`
	MachineID id.ID            `json:"machineId"`
	Machine   *machine.Machine `json:"machine,omitempty"`

	Lot      string         `json:"lot"`
	RPM      types.Quantity `json:"rpm"`
	Ne       types.Quantity `json:"ne"`
	Constant types.Quantity `json:"constant"`
}

// New creates an empty LotMachine.
func New() *LotMachine {
	return &LotMachine{}
}
