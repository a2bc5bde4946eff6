// Package memstore provides an in-memory domain.Collection.
// Documents are kept JSON-encoded so callers never share memory with the store.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"millerp/internal/core/apperror"
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

type record struct {
	raw []byte
	doc map[string]any
}

// Collection is a goroutine-safe in-memory collection.
type Collection[T entity.Document] struct {
	name  string
	newFn func() T

	mu      sync.RWMutex
	records map[id.ID]*record
	order   []id.ID
	indexes map[string]domain.IndexSpec
}

var _ domain.Collection[entity.Document] = (*Collection[entity.Document])(nil)

// New creates an empty collection. newFn returns a fresh document to decode into.
func New[T entity.Document](name string, newFn func() T) *Collection[T] {
	return &Collection[T]{
		name:    name,
		newFn:   newFn,
		records: make(map[id.ID]*record),
		indexes: make(map[string]domain.IndexSpec),
	}
}

// Name implements domain.Collection.
func (c *Collection[T]) Name() string { return c.name }

// Insert implements domain.Collection.
func (c *Collection[T]) Insert(ctx context.Context, doc T) (id.ID, error) {
	if err := ctx.Err(); err != nil {
		return id.Nil(), err
	}
	base := doc.Base()
	if base.IsNew() {
		base.ID = id.New()
	}
	base.SetVersion(1)

	rec, err := encode(doc)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[base.ID]; exists {
		return id.Nil(), apperror.NewDuplicate(c.name, filter.FieldID, base.ID.String())
	}
	c.records[base.ID] = rec
	c.order = append(c.order, base.ID)
	return base.ID, nil
}

// Update implements domain.Collection.
func (c *Collection[T]) Update(ctx context.Context, doc T) (id.ID, error) {
	if err := ctx.Err(); err != nil {
		return id.Nil(), err
	}
	base := doc.Base()

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.records[base.ID]
	if !ok {
		return id.Nil(), apperror.NewNotFound(c.name, base.ID.String())
	}
	if storedVersion(current.doc) != base.Version {
		return id.Nil(), apperror.NewConcurrentModification(c.name, base.ID.String())
	}

	base.Touch()
	rec, err := encode(doc)
	if err != nil {
		base.SetVersion(base.Version - 1)
		return id.Nil(), fmt.Errorf("update %s: %w", c.name, err)
	}
	c.records[base.ID] = rec
	return base.ID, nil
}

// GetByID implements domain.Collection.
func (c *Collection[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.mu.RLock()
	rec, ok := c.records[docID]
	c.mu.RUnlock()
	if !ok {
		return zero, apperror.NewNotFound(c.name, docID.String())
	}
	return c.decode(rec)
}

// SingleOrDefault implements domain.Collection.
func (c *Collection[T]) SingleOrDefault(ctx context.Context, where filter.Expr) (T, bool, error) {
	var zero T
	items, err := c.Find(ctx, where, domain.FindOptions{Limit: 1})
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

// Find implements domain.Collection.
func (c *Collection[T]) Find(ctx context.Context, where filter.Expr, opts domain.FindOptions) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	matched := make([]*record, 0)
	for _, docID := range c.order {
		rec := c.records[docID]
		ok, err := Match(rec.doc, where)
		if err != nil {
			c.mu.RUnlock()
			return nil, fmt.Errorf("find %s: %w", c.name, err)
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	c.mu.RUnlock()

	if len(opts.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range opts.Sort {
				cmp := compareValues(lookup(matched[i].doc, s.Field), lookup(matched[j].doc, s.Field))
				if cmp == 0 {
					continue
				}
				if s.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, rec := range matched {
		doc, err := c.decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// Count implements domain.Collection.
func (c *Collection[T]) Count(ctx context.Context, where filter.Expr) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, rec := range c.records {
		ok, err := Match(rec.doc, where)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", c.name, err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// CreateIndexes records the index specs. Lookups always scan.
func (c *Collection[T]) CreateIndexes(ctx context.Context, specs ...domain.IndexSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("create index on %s: empty index name", c.name)
		}
		if _, exists := c.indexes[spec.Name]; !exists {
			c.indexes[spec.Name] = spec
		}
	}
	return nil
}

// Indexes returns the names of created indexes, sorted.
func (c *Collection[T]) Indexes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.indexes))
	for name := range c.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored documents, including soft-deleted ones.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Collection[T]) decode(rec *record) (T, error) {
	doc := c.newFn()
	if err := json.Unmarshal(rec.raw, doc); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", c.name, err)
	}
	return doc, nil
}

func encode(doc any) (*record, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeTree(raw)
	if err != nil {
		return nil, err
	}
	return &record{raw: raw, doc: decoded}, nil
}

func storedVersion(doc map[string]any) int {
	if n, ok := doc["_version"].(json.Number); ok {
		v, err := n.Int64()
		if err == nil {
			return int(v)
		}
	}
	return 0
}
