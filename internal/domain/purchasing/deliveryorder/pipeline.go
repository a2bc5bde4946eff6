package deliveryorder

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"millerp/internal/core/apperror"
	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/purchasing/purchaseorder"
)

// phase is one fan-out step of the fulfillment propagation: run is applied
// to every id concurrently and the phase returns when all of them finished.
// A phase only starts after the previous phase returned, so it reads what
// the previous phase persisted.
type phase struct {
	name string
	ids  []id.ID
	run  func(ctx context.Context, docID id.ID) error
}

// propagation is the ordered list of phases run after a delivery order insert.
type propagation []phase

func (p propagation) run(ctx context.Context, limit int) error {
	for _, ph := range p {
		if err := ph.fanOut(ctx, limit); err != nil {
			return fmt.Errorf("%s: %w", ph.name, err)
		}
	}
	return nil
}

func (ph phase) fanOut(ctx context.Context, limit int) error {
	ctx, span := tracer.Start(ctx, "deliveryorder."+ph.name,
		trace.WithAttributes(attribute.Int("documents", len(ph.ids))))
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, docID := range ph.ids {
		g.Go(func() error {
			return ph.run(gctx, docID)
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// fulfiller propagates one delivery order to the purchase orders it fulfils.
type fulfiller struct {
	do        *DeliveryOrder
	orders    domain.Collection[*purchaseorder.PurchaseOrder]
	externals domain.Collection[*purchaseorder.PurchaseOrderExternal]
}

func (f *fulfiller) propagation() propagation {
	return propagation{
		{name: "fulfill_purchase_orders", ids: f.do.PurchaseOrderIDs(), run: f.fulfillOrder},
		{name: "refresh_externals", ids: f.do.ExternalIDs(), run: f.refreshExternal},
	}
}

// fulfillOrder appends every fulfillment of the delivery order for poID to
// the matching order item, recomputes closure and persists the order.
func (f *fulfiller) fulfillOrder(ctx context.Context, poID id.ID) error {
	po, err := f.orders.GetByID(ctx, poID)
	if err != nil {
		return fmt.Errorf("get purchase order %s: %w", poID, err)
	}

	for _, ff := range f.do.FulfillmentsOf(poID) {
		record := purchaseorder.Fulfillment{
			DeliveryOrderNo:   f.do.No,
			DeliveredQuantity: ff.DeliveredQuantity,
			DeliveryOrderDate: f.do.Date,
			SupplierDoDate:    f.do.SupplierDoDate,
		}
		if !po.ApplyFulfillment(ff.ProductID, record) {
			return apperror.NewBusinessRule(CodeFulfillmentItemNotFound,
				fmt.Sprintf("Purchase order %s has no item for product %s.", po.No, ff.ProductID)).
				WithDetail("purchase_order_id", poID.String()).
				WithDetail("product_id", ff.ProductID.String())
		}
	}
	po.Recompute()

	if _, err := f.orders.Update(ctx, po); err != nil {
		return fmt.Errorf("update purchase order %s: %w", poID, err)
	}
	return nil
}

// refreshExternal re-reads the orders of an external purchase order and
// replaces its snapshots with them.
func (f *fulfiller) refreshExternal(ctx context.Context, poeID id.ID) error {
	poe, err := f.externals.GetByID(ctx, poeID)
	if err != nil {
		return fmt.Errorf("get purchase order external %s: %w", poeID, err)
	}

	orderIDs := poe.OrderIDs()
	orders := make([]*purchaseorder.PurchaseOrder, 0, len(orderIDs))
	for _, poID := range orderIDs {
		po, err := f.orders.GetByID(ctx, poID)
		if err != nil {
			return fmt.Errorf("get purchase order %s: %w", poID, err)
		}
		orders = append(orders, po)
	}
	poe.Refresh(orders)

	if _, err := f.externals.Update(ctx, poe); err != nil {
		return fmt.Errorf("update purchase order external %s: %w", poeID, err)
	}
	return nil
}
