// Package fabricqc holds the fabric quality control (defect inspection) document.
package fabricqc

import (
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
)

// CollectionName is the store collection of fabric quality controls.
const CollectionName = "fabric_quality_controls"

// FabricQualityControl records a defect inspection of a kanban.
type FabricQualityControl struct {
	entity.BaseDocument

	Code        string `json:"code"`
	KanbanID    id.ID  `json:"kanbanId"`
	PointSystem int    `json:"pointSystem,omitempty"`
}

// New creates an empty FabricQualityControl.
func New() *FabricQualityControl {
	return &FabricQualityControl{}
}
