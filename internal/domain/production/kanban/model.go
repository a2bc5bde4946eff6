// Package kanban holds the production Kanban document that inspections refer to.
package kanban

import (
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
)

// CollectionName is the store collection of kanbans.
const CollectionName = "fp_kanbans"

// Named is an embedded master reference that only carries a name.
type Named struct {
	ID   id.ID  `json:"_id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

// ProductionOrder is the order snapshot embedded in a kanban.
type ProductionOrder struct {
	ID                   id.ID  `json:"_id"`
	OrderNo              string `json:"orderNo"`
	OrderType            Named  `json:"orderType"`
	Material             Named  `json:"material"`
	MaterialConstruction Named  `json:"materialConstruction"`
	YarnMaterial         Named  `json:"yarnMaterial"`
	MaterialWidth        string `json:"materialWidth"`
}

// OrderDetail is the color line of the production order the kanban works on.
type OrderDetail struct {
	Code         string `json:"code,omitempty"`
	ColorRequest string `json:"colorRequest"`
	ColorType    *Named `json:"colorType,omitempty"`
}

// Cart identifies the physical cart of a kanban.
type Cart struct {
	CartNumber string `json:"cartNumber"`
	Qty        int    `json:"qty,omitempty"`
}

// Kanban tracks one cart of a production order through the finishing line.
type Kanban struct {
	entity.BaseDocument

	Code                          string           `json:"code"`
	ProductionOrderID             id.ID            `json:"productionOrderId"`
	ProductionOrder               *ProductionOrder `json:"productionOrder,omitempty"`
	SelectedProductionOrderDetail *OrderDetail     `json:"selectedProductionOrderDetail,omitempty"`
	Cart                          Cart             `json:"cart"`
}

// New creates an empty Kanban.
func New() *Kanban {
	return &Kanban{}
}

// Construction joins material, construction, yarn and width,
// e.g. "Cotton / 133x72 / 40s / 58".
func (p *ProductionOrder) Construction() string {
	if p == nil {
		return ""
	}
	return p.Material.Name + " / " + p.MaterialConstruction.Name + " / " + p.YarnMaterial.Name + " / " + p.MaterialWidth
}

// Color returns "<color type> <color request>", or only the request without a type.
func (d *OrderDetail) Color() string {
	if d == nil {
		return ""
	}
	if d.ColorType == nil {
		return d.ColorRequest
	}
	return d.ColorType.Name + " " + d.ColorRequest
}
