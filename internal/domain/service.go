// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"
	"fmt"
	"time"

	"millerp/internal/core/apperror"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/core/tx"
	"millerp/internal/domain/filter"
	"millerp/pkg/logger"
	"millerp/pkg/metrics"
)

// ValidateFunc checks a candidate document against the store and returns
// the normalized document, or a validation error carrying FieldErrors.
type ValidateFunc[T entity.Document] func(ctx context.Context, doc T) (T, error)

// QueryFunc builds the store predicate of a list request.
type QueryFunc func(p Paging) filter.Expr

// modifiable is implemented by documents that can refuse modification (posted documents).
type modifiable interface {
	CanModify(docID id.ID) error
}

// DocumentService provides create/update/delete/read for one document type.
// Entity managers embed it and add their own operations.
type DocumentService[T entity.Document] struct {
	coll      Collection[T]
	txManager tx.Manager
	validate  ValidateFunc[T]
	query     QueryFunc
	hooks     *HookRegistry[T]
	metrics   *metrics.Metrics

	// entityName for error messages, logs and metric labels
	entityName string
}

// DocumentServiceConfig configures the document service.
type DocumentServiceConfig[T entity.Document] struct {
	Collection Collection[T]
	TxManager  tx.Manager // Optional, defaults to tx.Nop
	Validate   ValidateFunc[T]
	Query      QueryFunc
	Metrics    *metrics.Metrics // Optional
	EntityName string
}

// NewDocumentService creates a new document service.
func NewDocumentService[T entity.Document](cfg DocumentServiceConfig[T]) *DocumentService[T] {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Nop{}
	}
	query := cfg.Query
	if query == nil {
		query = func(Paging) filter.Expr { return filter.NotDeleted() }
	}
	return &DocumentService[T]{
		coll:       cfg.Collection,
		txManager:  txm,
		validate:   cfg.Validate,
		query:      query,
		hooks:      NewHookRegistry[T](),
		metrics:    cfg.Metrics,
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *DocumentService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Collection returns the underlying store collection.
func (s *DocumentService[T]) Collection() Collection[T] {
	return s.coll
}

// TxManager returns the transaction manager used for writes.
func (s *DocumentService[T]) TxManager() tx.Manager {
	return s.txManager
}

// EntityName returns the name used in errors, logs and metrics.
func (s *DocumentService[T]) EntityName() string {
	return s.entityName
}

// Observe records metrics of a finished operation.
func (s *DocumentService[T]) Observe(operation string, started time.Time, err error) {
	s.metrics.Observe(s.entityName, operation, started, err)
}

// Validate runs the entity validator.
func (s *DocumentService[T]) Validate(ctx context.Context, doc T) (T, error) {
	return s.validate(ctx, doc)
}

// Create validates and inserts a new document.
func (s *DocumentService[T]) Create(ctx context.Context, doc T) (docID id.ID, err error) {
	defer func(started time.Time) { s.Observe("create", started, err) }(time.Now())

	valid, err := s.validate(ctx, doc)
	if err != nil {
		return id.Nil(), err
	}

	return s.Insert(ctx, valid)
}

// Insert stores an already validated document and runs after-create hooks.
func (s *DocumentService[T]) Insert(ctx context.Context, valid T) (id.ID, error) {
	var docID id.ID
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		docID, err = s.coll.Insert(ctx, valid)
		if err != nil {
			return fmt.Errorf("insert %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return id.Nil(), err
	}

	s.runHook(ctx, AfterCreate, valid)
	logger.Info(ctx, "document created", "entity", s.entityName, "id", docID)
	return docID, nil
}

// Update validates and replaces an existing document.
// A zero version is taken from the stored document; creation stamps are always kept.
func (s *DocumentService[T]) Update(ctx context.Context, doc T) (docID id.ID, err error) {
	defer func(started time.Time) { s.Observe("update", started, err) }(time.Now())

	if _, err := s.PrepareUpdate(ctx, doc); err != nil {
		return id.Nil(), err
	}

	valid, err := s.validate(ctx, doc)
	if err != nil {
		return id.Nil(), err
	}

	return s.Replace(ctx, valid, AfterUpdate)
}

// PrepareUpdate loads the stored document, refuses posted documents and
// carries version and creation stamp over to doc.
func (s *DocumentService[T]) PrepareUpdate(ctx context.Context, doc T) (T, error) {
	base := doc.Base()
	existing, err := s.GetByID(ctx, base.ID)
	if err != nil {
		return existing, err
	}
	if m, ok := any(existing).(modifiable); ok {
		if err := m.CanModify(base.ID); err != nil {
			return existing, err
		}
	}

	stored := existing.Base()
	if base.Version == 0 {
		base.Version = stored.Version
	}
	base.CreatedBy = stored.CreatedBy
	base.CreatedDate = stored.CreatedDate
	base.CreateAgent = stored.CreateAgent
	return existing, nil
}

// Replace persists an already validated document and runs the hooks of event.
func (s *DocumentService[T]) Replace(ctx context.Context, valid T, event HookEvent) (id.ID, error) {
	var docID id.ID
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		docID, err = s.coll.Update(ctx, valid)
		if err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return id.Nil(), err
	}

	s.runHook(ctx, event, valid)
	logger.Info(ctx, "document updated", "entity", s.entityName, "id", docID, "event", string(event))
	return docID, nil
}

// Delete sets the deletion mark. Posted documents cannot be deleted.
func (s *DocumentService[T]) Delete(ctx context.Context, docID id.ID) (err error) {
	defer func(started time.Time) { s.Observe("delete", started, err) }(time.Now())

	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if m, ok := any(doc).(modifiable); ok {
		if err := m.CanModify(docID); err != nil {
			return err
		}
	}

	base := doc.Base()
	base.MarkDeleted()
	base.StampBy(appctx.GetUsername(ctx), entity.DefaultAgent)

	_, err = s.Replace(ctx, doc, AfterDelete)
	return err
}

// GetByID retrieves a document that is not soft-deleted.
func (s *DocumentService[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	doc, err := s.coll.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return doc, apperror.NewNotFound(s.entityName, docID.String())
		}
		return doc, fmt.Errorf("get %s: %w", s.entityName, err)
	}
	if doc.Base().DeletionMark {
		var zero T
		return zero, apperror.NewNotFound(s.entityName, docID.String())
	}
	return doc, nil
}

// Read lists documents matching the paging request.
func (s *DocumentService[T]) Read(ctx context.Context, p Paging) (result ListResult[T], err error) {
	defer func(started time.Time) { s.Observe("read", started, err) }(time.Now())

	err = s.ReadOnly(ctx, func(ctx context.Context) error {
		var listErr error
		result, listErr = List(ctx, s.coll, s.query(p), p)
		return listErr
	})
	if err != nil {
		return result, fmt.Errorf("read %s: %w", s.entityName, err)
	}
	return result, nil
}

// ReadOnly runs fn in a read-only transaction when the manager has one.
func (s *DocumentService[T]) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if ro, ok := s.txManager.(tx.ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return fn(ctx)
}

// runHook runs hooks outside of the write transaction.
// The document is already stored, so failures are logged, not returned.
func (s *DocumentService[T]) runHook(ctx context.Context, event HookEvent, doc T) {
	if err := s.hooks.Run(ctx, event, doc); err != nil {
		logger.Warn(ctx, "hook failed", "entity", s.entityName, "event", string(event), "error", err)
	}
}
