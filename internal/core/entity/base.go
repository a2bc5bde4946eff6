package entity

import (
	"context"
	"time"

	"millerp/internal/core/id"
)

// Validatable is implemented by documents that can check invariants
// which need no store lookups.
type Validatable interface {
	Validate(ctx context.Context) error
}

// Document is any value persisted through a domain.Collection.
// Implemented by embedding BaseDocument.
type Document interface {
	Base() *BaseDocument
}

// DefaultAgent is recorded as the create/update agent by managers.
const DefaultAgent = "manager"

///////////////////
// Stamp         //
///////////////////

// Stamp holds the audit fields that every manager writes before persisting.
type Stamp struct {
	CreatedBy   string    `json:"_createdBy,omitempty"`
	CreatedDate time.Time `json:"_createdDate"`
	CreateAgent string    `json:"_createAgent,omitempty"`
	UpdatedBy   string    `json:"_updatedBy,omitempty"`
	UpdatedDate time.Time `json:"_updatedDate"`
	UpdateAgent string    `json:"_updateAgent,omitempty"`
}

///////////////////
// Base Document //
///////////////////

// BaseDocument contains the fields shared by all stored documents.
type BaseDocument struct {
	// ID is the primary key (UUIDv7). Nil until first insert.
	ID id.ID `json:"_id"`

	// DeletionMark indicates a soft-deleted document.
	// Soft-deleted documents are excluded from every default query.
	DeletionMark bool `json:"_deleted"`

	// Active mirrors the stored document's active flag.
	Active bool `json:"_active"`

	// Version for optimistic locking (incremented on each update)
	Version int `json:"_version"`

	Stamp
}

// NewBaseDocument creates a BaseDocument with a generated ID.
func NewBaseDocument() BaseDocument {
	return BaseDocument{
		ID:      id.New(),
		Active:  true,
		Version: 1,
	}
}

// Base implements Document.
func (b *BaseDocument) Base() *BaseDocument {
	return b
}

// IsNew reports whether the document has never been inserted.
func (b *BaseDocument) IsNew() bool {
	return id.IsNil(b.ID)
}

// StampBy records actor and agent on the audit fields.
// Creation fields are only written the first time.
func (b *BaseDocument) StampBy(actor, agent string) {
	now := time.Now().UTC()
	if b.CreatedDate.IsZero() {
		b.CreatedBy = actor
		b.CreatedDate = now
		b.CreateAgent = agent
	}
	b.UpdatedBy = actor
	b.UpdatedDate = now
	b.UpdateAgent = agent
}

// Touch increments version (for optimistic locking).
func (b *BaseDocument) Touch() {
	b.Version++
}

// MarkDeleted sets the deletion mark.
func (b *BaseDocument) MarkDeleted() {
	b.DeletionMark = true
}

// Undelete clears the deletion mark.
func (b *BaseDocument) Undelete() {
	b.DeletionMark = false
}

// SetVersion updates the version number (used by stores after a write).
func (b *BaseDocument) SetVersion(v int) {
	b.Version = v
}
