// Package inspectionlotcolor manages color lot inspections of finished fabric.
package inspectionlotcolor

import (
	"time"

	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/domain/production/kanban"
)

// CollectionName is the store collection of lot color inspections.
const CollectionName = "fp_inspection_lot_colors"

// Item is one inspected piece.
type Item struct {
	PcsNo  string `json:"pcsNo"`
	Grade  string `json:"grade"`
	Lot    string `json:"lot"`
	Status string `json:"status"`
}

// InspectionLotColor records the lot and color grading of the pieces of a kanban.
type InspectionLotColor struct {
	entity.BaseDocument

	Code string `json:"code"`

	FabricQualityControlID   id.ID  `json:"fabricQualityControlId"`
	FabricQualityControlCode string `json:"fabricQualityControlCode"`

	KanbanID id.ID          `json:"kanbanId"`
	Kanban   *kanban.Kanban `json:"kanban,omitempty"`

	Date  time.Time `json:"date"`
	Items []Item    `json:"items"`
}

// New creates an empty InspectionLotColor.
func New() *InspectionLotColor {
	return &InspectionLotColor{}
}
