// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/domain/filter"
)

// --- Paging ---

const (
	DefaultPage  = 1
	DefaultSize  = 20
	DefaultOrder = filter.FieldID
)

// Paging is a list request coming from the request layer.
type Paging struct {
	Page    int
	Size    int
	Order   string // field path, defaults to "_id"
	Desc    bool
	Keyword string

	// Filter is ANDed verbatim into the built query.
	Filter filter.Expr
}

// Normalize fills in defaults: page 1, size 20, ordered by _id ascending.
func (p Paging) Normalize() Paging {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultSize
	}
	if p.Order == "" {
		p.Order = DefaultOrder
	}
	return p
}

// FindOptions returns sort and window for the normalized paging.
func (p Paging) FindOptions() FindOptions {
	p = p.Normalize()
	return FindOptions{
		Sort:   []SortField{{Field: p.Order, Desc: p.Desc}},
		Limit:  p.Size,
		Offset: (p.Page - 1) * p.Size,
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"data"`
	TotalCount int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
}

// --- Document Store ---

// SortType tells stores how to compare a sort field.
type SortType int

const (
	SortAuto SortType = iota // store native ordering
	SortTime
	SortNumeric
)

// SortField orders results by a field path.
type SortField struct {
	Field string
	Desc  bool
	Type  SortType
}

// FindOptions controls ordering and window of Find.
// Zero Limit means no limit.
type FindOptions struct {
	Sort   []SortField
	Limit  int
	Offset int
}

// IndexSpec describes a secondary index of a collection.
type IndexSpec struct {
	Name   string
	Keys   []SortField
	Unique bool
}

// Collection is a named set of documents of one type.
// Implementations: docstore (PostgreSQL JSONB) and memstore.
type Collection[T entity.Document] interface {
	// Name returns the collection name.
	Name() string

	// Insert stores a new document. A nil ID is replaced by a generated one.
	Insert(ctx context.Context, doc T) (id.ID, error)

	// Update replaces the stored document with the same ID.
	// Fails with ConcurrentModification when the stored version differs.
	Update(ctx context.Context, doc T) (id.ID, error)

	// GetByID retrieves a document by ID, including soft-deleted ones.
	GetByID(ctx context.Context, docID id.ID) (T, error)

	// SingleOrDefault returns the first match, or false when none.
	SingleOrDefault(ctx context.Context, where filter.Expr) (T, bool, error)

	// Find returns every match ordered by opts.
	Find(ctx context.Context, where filter.Expr, opts FindOptions) ([]T, error)

	// Count returns the number of matches.
	Count(ctx context.Context, where filter.Expr) (int64, error)

	// CreateIndexes ensures the indexes exist. Existing indexes are kept.
	CreateIndexes(ctx context.Context, specs ...IndexSpec) error
}

// List runs a paged query: total count plus one page of documents.
func List[T entity.Document](ctx context.Context, c Collection[T], where filter.Expr, p Paging) (ListResult[T], error) {
	p = p.Normalize()
	result := ListResult[T]{Page: p.Page, Size: p.Size}

	total, err := c.Count(ctx, where)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	items, err := c.Find(ctx, where, p.FindOptions())
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}
