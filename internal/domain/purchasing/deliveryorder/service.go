package deliveryorder

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"millerp/internal/core/i18n"
	"millerp/internal/core/id"
	"millerp/internal/core/tx"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
	"millerp/internal/domain/purchasing/purchaseorder"
	"millerp/pkg/logger"
	"millerp/pkg/metrics"
)

var tracer = otel.Tracer("millerp/deliveryorder")

// CodeFulfillmentItemNotFound is returned when a fulfillment names a product
// its purchase order does not contain.
const CodeFulfillmentItemNotFound = "FULFILLMENT_ITEM_NOT_FOUND"

// DefaultFanoutLimit bounds the concurrent purchase order updates of one creation.
const DefaultFanoutLimit = 4

// Service provides business logic for delivery orders.
type Service struct {
	*domain.DocumentService[*DeliveryOrder]
	orders    domain.Collection[*purchaseorder.PurchaseOrder]
	externals domain.Collection[*purchaseorder.PurchaseOrderExternal]
	metrics   *metrics.Metrics
	fanout    int
}

// Config holds the service dependencies.
type Config struct {
	Collection  domain.Collection[*DeliveryOrder]
	Orders      domain.Collection[*purchaseorder.PurchaseOrder]
	Externals   domain.Collection[*purchaseorder.PurchaseOrderExternal]
	Translator  i18n.Translator
	TxManager   tx.Manager       // Optional, tx.Nop keeps already persisted updates on failure
	Metrics     *metrics.Metrics // Optional
	FanoutLimit int              // Optional, DefaultFanoutLimit when zero
	Now         func() time.Time // Optional, for tests
}

// NewService creates a new delivery order service.
func NewService(cfg Config) *Service {
	t := cfg.Translator
	if t == nil {
		t = i18n.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	fanout := cfg.FanoutLimit
	if fanout <= 0 {
		fanout = DefaultFanoutLimit
	}

	v := &Validator{coll: cfg.Collection, t: t, now: now}

	return &Service{
		DocumentService: domain.NewDocumentService(domain.DocumentServiceConfig[*DeliveryOrder]{
			Collection: cfg.Collection,
			TxManager:  cfg.TxManager,
			Validate:   v.Validate,
			Query:      Query,
			Metrics:    cfg.Metrics,
			EntityName: "delivery_order",
		}),
		orders:    cfg.Orders,
		externals: cfg.Externals,
		metrics:   cfg.Metrics,
		fanout:    fanout,
	}
}

// Create validates and inserts the delivery order, then propagates its
// fulfillments: first to every purchase order it references, then to every
// external purchase order of its items. Everything runs in one transaction.
func (s *Service) Create(ctx context.Context, do *DeliveryOrder) (docID id.ID, err error) {
	defer func(started time.Time) { s.Observe("create", started, err) }(time.Now())

	ctx, span := tracer.Start(ctx, "deliveryorder.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	valid, err := s.Validate(ctx, do)
	if err != nil {
		return id.Nil(), err
	}

	f := &fulfiller{do: valid, orders: s.orders, externals: s.externals}
	steps := f.propagation()

	err = s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		docID, err = s.Collection().Insert(ctx, valid)
		if err != nil {
			return fmt.Errorf("insert delivery order: %w", err)
		}
		return steps.run(ctx, s.fanout)
	})
	if err != nil {
		return id.Nil(), err
	}

	orders, externals := len(steps[0].ids), len(steps[1].ids)
	span.SetAttributes(
		attribute.String("delivery_order.no", valid.No),
		attribute.Int("purchase_orders", orders),
		attribute.Int("purchase_order_externals", externals),
	)
	s.metrics.AddFulfillmentUpdates("purchase_order", orders)
	s.metrics.AddFulfillmentUpdates("purchase_order_external", externals)

	if err := s.Hooks().Run(ctx, domain.AfterCreate, valid); err != nil {
		logger.Warn(ctx, "hook failed", "entity", s.EntityName(), "event", string(domain.AfterCreate), "error", err)
	}
	logger.Info(ctx, "delivery order created",
		"id", docID,
		"no", valid.No,
		"purchase_orders", orders,
		"purchase_order_externals", externals,
	)
	return docID, nil
}

// Post validates the delivery order and sets it posted. Posting is one-way:
// a posted document cannot be updated, deleted or posted again.
func (s *Service) Post(ctx context.Context, do *DeliveryOrder) (docID id.ID, err error) {
	defer func(started time.Time) { s.Observe("post", started, err) }(time.Now())

	if _, err := s.PrepareUpdate(ctx, do); err != nil {
		return id.Nil(), err
	}
	valid, err := s.Validate(ctx, do)
	if err != nil {
		return id.Nil(), err
	}
	valid.markPosted()

	return s.Replace(ctx, valid, domain.AfterPost)
}

// GetDataDeliveryOrder returns the non-deleted delivery orders matching q.
// Returns an empty list when q has no usable parameter combination.
func (s *Service) GetDataDeliveryOrder(ctx context.Context, q DataQuery) (items []*DeliveryOrder, err error) {
	defer func(started time.Time) { s.Observe("get_data", started, err) }(time.Now())

	where, ok := q.Expr()
	if !ok {
		return []*DeliveryOrder{}, nil
	}
	items, err = s.Collection().Find(ctx, where, domain.FindOptions{
		Sort: []domain.SortField{{Field: filter.FieldID}},
	})
	if err != nil {
		return nil, fmt.Errorf("get delivery orders: %w", err)
	}
	return items, nil
}

// ReadBySupplierAndUnit lists delivery orders of a supplier that fulfil
// purchase orders of a unit.
func (s *Service) ReadBySupplierAndUnit(ctx context.Context, supplierID, unitID id.ID, p domain.Paging) (result domain.ListResult[*DeliveryOrder], err error) {
	defer func(started time.Time) { s.Observe("read_by_supplier_unit", started, err) }(time.Now())

	err = s.ReadOnly(ctx, func(ctx context.Context) error {
		var listErr error
		result, listErr = domain.List(ctx, s.Collection(), SupplierUnitQuery(supplierID, unitID, p.Keyword), p)
		return listErr
	})
	if err != nil {
		return result, fmt.Errorf("read delivery orders by supplier and unit: %w", err)
	}
	return result, nil
}
