// Package machine holds the Machine master document.
package machine

import "millerp/internal/core/entity"

// CollectionName is the store collection of machines.
const CollectionName = "machines"

// Machine is a production machine of a unit.
type Machine struct {
	entity.BaseDocument

	Code     string `json:"code"`
	Name     string `json:"name"`
	Process  string `json:"process,omitempty"`
	Location string `json:"location,omitempty"`
}

// New creates an empty Machine.
func New() *Machine {
	return &Machine{}
}
