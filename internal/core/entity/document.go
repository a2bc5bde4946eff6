package entity

import (
	"millerp/internal/core/apperror"
	"millerp/internal/core/id"
)

// Posting is embedded by documents with a one-way posted state.
// There is no unpost transition.
type Posting struct {
	IsPosted bool `json:"isPosted"`
}

// CanModify checks if the document can still be modified.
func (p *Posting) CanModify(docID id.ID) error {
	if p.IsPosted {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentPosted,
			"Cannot modify posted document.",
		).WithDetail("document_id", docID.String())
	}
	return nil
}

// MarkPosted sets the posted flag.
func (p *Posting) MarkPosted() {
	p.IsPosted = true
}
