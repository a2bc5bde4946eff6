package deliveryorder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millerp/internal/core/apperror"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/id"
	"millerp/internal/core/types"
	"millerp/internal/domain"
	"millerp/internal/domain/purchasing/purchaseorder"
	"millerp/internal/infrastructure/storage/memstore"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	dos       *memstore.Collection[*DeliveryOrder]
	orders    *memstore.Collection[*purchaseorder.PurchaseOrder]
	externals *memstore.Collection[*purchaseorder.PurchaseOrderExternal]

	supplier id.ID
	unit     id.ID
}

func newFixture(t *testing.T, fanout int) *fixture {
	t.Helper()
	f := &fixture{
		dos:       memstore.New(CollectionName, New),
		orders:    memstore.New(purchaseorder.CollectionName, purchaseorder.New),
		externals: memstore.New(purchaseorder.ExternalCollectionName, purchaseorder.NewExternal),
		supplier:  id.New(),
		unit:      id.New(),
	}
	f.svc = NewService(Config{
		Collection:  f.dos,
		Orders:      f.orders,
		Externals:   f.externals,
		FanoutLimit: fanout,
		Now:         func() time.Time { return testNow },
	})
	return f
}

// seedOrder stores a purchase order with one item per deal quantity.
func (f *fixture) seedOrder(t *testing.T, no string, deals ...int64) *purchaseorder.PurchaseOrder {
	t.Helper()
	po := &purchaseorder.PurchaseOrder{
		No:         no,
		UnitID:     f.unit,
		Unit:       purchaseorder.Unit{ID: f.unit, Division: "SPINNING", SubDivision: "SPINNING 1"},
		SupplierID: f.supplier,
	}
	for i, deal := range deals {
		po.Items = append(po.Items, purchaseorder.Item{
			Product:      purchaseorder.ProductRef{ID: id.New(), Code: fmt.Sprintf("P%d", i), Name: "Cotton"},
			DealQuantity: types.NewQuantity(deal),
		})
	}
	_, err := f.orders.Insert(context.Background(), po)
	require.NoError(t, err)
	return po
}

func (f *fixture) seedExternal(t *testing.T, no string, orders ...*purchaseorder.PurchaseOrder) *purchaseorder.PurchaseOrderExternal {
	t.Helper()
	poe := &purchaseorder.PurchaseOrderExternal{No: no, SupplierID: f.supplier, Items: orders}
	_, err := f.externals.Insert(context.Background(), poe)
	require.NoError(t, err)
	return poe
}

func fulfillmentOf(po *purchaseorder.PurchaseOrder, item int, ordered, delivered int64) Fulfillment {
	return Fulfillment{
		PurchaseOrderID:       po.ID,
		PurchaseOrder:         po,
		ProductID:             po.Items[item].Product.ID,
		Product:               po.Items[item].Product,
		PurchaseOrderQuantity: types.NewQuantity(ordered),
		DeliveredQuantity:     types.NewQuantity(delivered),
	}
}

func (f *fixture) deliveryOrder(no string, poe *purchaseorder.PurchaseOrderExternal, fulfillments ...Fulfillment) *DeliveryOrder {
	return &DeliveryOrder{
		No:             no,
		RefNo:          "SJ-" + no,
		Date:           testNow.Add(-4 * time.Hour),
		SupplierDoDate: testNow.Add(-24 * time.Hour),
		SupplierID:     f.supplier,
		Supplier:       &Supplier{ID: f.supplier, Code: "S01", Name: "PT Kapas Jaya"},
		Items: []Item{{
			PurchaseOrderExternalID: poe.ID,
			PurchaseOrderExternal:   poe,
			Fulfillments:            fulfillments,
		}},
	}
}

func TestCreate_FullDeliveryClosesOrder(t *testing.T) {
	ctx := appctx.WithUsername(context.Background(), "dev")
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 100, 100)))
	require.NoError(t, err)

	stored, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	item := stored.Items[0]
	assert.True(t, types.NewQuantity(100).Equal(item.RealizationQuantity))
	assert.True(t, item.IsClosed)
	assert.True(t, stored.IsClosed)
	require.Len(t, item.Fulfillments, 1)
	assert.Equal(t, "DO-1", item.Fulfillments[0].DeliveryOrderNo)

	ext, err := f.externals.GetByID(ctx, poe.ID)
	require.NoError(t, err)
	assert.True(t, ext.IsClosed)
	require.Len(t, ext.Items, 1)
	assert.True(t, ext.Items[0].IsClosed, "external holds the updated order")
}

func TestCreate_PartialDeliveryKeepsOrderOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 100, 40)))
	require.NoError(t, err)

	stored, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, types.NewQuantity(40).Equal(stored.Items[0].RealizationQuantity))
	assert.False(t, stored.Items[0].IsClosed)
	assert.False(t, stored.IsClosed)

	ext, err := f.externals.GetByID(ctx, poe.ID)
	require.NoError(t, err)
	assert.False(t, ext.IsClosed)

	// the remaining quantity closes it
	_, err = f.svc.Create(ctx, f.deliveryOrder("DO-2", poe, fulfillmentOf(po, 0, 60, 60)))
	require.NoError(t, err)

	stored, err = f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, types.NewQuantity(100).Equal(stored.Items[0].RealizationQuantity))
	assert.Len(t, stored.Items[0].Fulfillments, 2)
	assert.True(t, stored.IsClosed)

	ext, err = f.externals.GetByID(ctx, poe.ID)
	require.NoError(t, err)
	assert.True(t, ext.IsClosed)
}

func TestCreate_OverDeliveryRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 100, 120)))
	require.Error(t, err)

	errs, ok := apperror.FieldErrorsOf(err)
	require.True(t, ok)
	msg, ok := errs.Message("items", 0, "fulfillments", 0, "deliveredQuantity")
	require.True(t, ok)
	assert.Equal(t, "DeliveredQuantity is greater than purchaseOrderQuantity", msg)

	assert.Equal(t, 0, f.dos.Len())
	stored, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items[0].Fulfillments)
	assert.Equal(t, 1, stored.Version)
}

func TestCreate_ManyOrdersFanOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	var (
		orders       []*purchaseorder.PurchaseOrder
		fulfillments []Fulfillment
	)
	for i := range 6 {
		po := f.seedOrder(t, fmt.Sprintf("PO-%d", i), 10, 20)
		orders = append(orders, po)
		fulfillments = append(fulfillments,
			fulfillmentOf(po, 0, 10, 10),
			fulfillmentOf(po, 1, 20, 20),
		)
	}
	poe := f.seedExternal(t, "POE-1", orders...)

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillments...))
	require.NoError(t, err)

	for _, po := range orders {
		stored, err := f.orders.GetByID(ctx, po.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsClosed, po.No)
		assert.Equal(t, 2, stored.Version, "each order is written once")
	}

	ext, err := f.externals.GetByID(ctx, poe.ID)
	require.NoError(t, err)
	assert.True(t, ext.IsClosed)
	assert.Len(t, ext.Items, 6)
}

func TestCreate_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	ff := fulfillmentOf(po, 0, 100, 10)
	ff.ProductID = id.New()
	ff.Product = purchaseorder.ProductRef{}

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, ff))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeFulfillmentItemNotFound, appErr.Code)
}

func TestCreate_FulfillmentWithoutProductRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	ff := fulfillmentOf(po, 0, 100, 10)
	ff.ProductID = id.Nil()
	ff.Product = purchaseorder.ProductRef{}

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, ff))
	require.Error(t, err)

	errs, ok := apperror.FieldErrorsOf(err)
	require.True(t, ok)
	msg, ok := errs.Message("items", 0, "fulfillments", 0, "product")
	require.True(t, ok)
	assert.Equal(t, "Product is required", msg)

	assert.Equal(t, 0, f.dos.Len())
	stored, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items[0].Fulfillments)
}

func TestValidate_Aggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)

	t.Run("empty document", func(t *testing.T) {
		_, err := f.svc.Validate(ctx, &DeliveryOrder{})
		errs, ok := apperror.FieldErrorsOf(err)
		require.True(t, ok)
		assert.Equal(t, apperror.FieldErrors{
			"no":             "No is required",
			"date":           "Date is required",
			"supplierDoDate": "SupplierDoDate is required",
			"supplier":       "NameSupplier is required",
			"items":          "Items is required",
		}, errs)
	})

	t.Run("future date and nested item errors", func(t *testing.T) {
		po := f.seedOrder(t, "PO-1", 100)
		poe := f.seedExternal(t, "POE-1", po)

		do := f.deliveryOrder("DO-9", poe, fulfillmentOf(po, 0, 100, 50), fulfillmentOf(po, 0, 100, 0))
		do.Date = testNow.Add(time.Hour)
		do.Items = append(do.Items, Item{})

		_, err := f.svc.Validate(ctx, do)
		errs, ok := apperror.FieldErrorsOf(err)
		require.True(t, ok)

		assert.Equal(t, "Date is greater than today", errs["date"])

		items, ok := errs["items"].([]apperror.FieldErrors)
		require.True(t, ok)
		require.Len(t, items, 2)

		fulfillments, ok := items[0]["fulfillments"].([]apperror.FieldErrors)
		require.True(t, ok)
		require.Len(t, fulfillments, 2)
		assert.Empty(t, fulfillments[0])
		assert.Equal(t, "DeliveredQuantity is required or not 0", fulfillments[1]["deliveredQuantity"])

		msg, ok := errs.Message("items", 1, "purchaseOrderExternal")
		require.True(t, ok)
		assert.Equal(t, "PurchaseOrderExternal is required", msg)
	})

	t.Run("duplicate no", func(t *testing.T) {
		po := f.seedOrder(t, "PO-2", 100)
		poe := f.seedExternal(t, "POE-2", po)
		_, err := f.svc.Create(ctx, f.deliveryOrder("DO-DUP", poe, fulfillmentOf(po, 0, 100, 1)))
		require.NoError(t, err)

		_, err = f.svc.Validate(ctx, f.deliveryOrder("DO-DUP", poe, fulfillmentOf(po, 0, 100, 1)))
		errs, ok := apperror.FieldErrorsOf(err)
		require.True(t, ok)
		assert.Equal(t, apperror.FieldErrors{"no": "No is already exists"}, errs)
	})
}

func TestPost(t *testing.T) {
	ctx := appctx.WithUsername(context.Background(), "dev")
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	docID, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 100, 40)))
	require.NoError(t, err)

	before, err := f.svc.GetByID(ctx, docID)
	require.NoError(t, err)
	require.False(t, before.IsPosted)

	toPost, err := f.svc.GetByID(ctx, docID)
	require.NoError(t, err)
	_, err = f.svc.Post(ctx, toPost)
	require.NoError(t, err)

	after, err := f.svc.GetByID(ctx, docID)
	require.NoError(t, err)
	assert.True(t, after.IsPosted)
	assert.True(t, after.Items[0].Fulfillments[0].IsPosted)
	assert.Equal(t, before.No, after.No)
	assert.True(t, before.Date.Equal(after.Date))
	assert.True(t, before.SupplierDoDate.Equal(after.SupplierDoDate))
	assert.Equal(t, before.SupplierID, after.SupplierID)
	assert.True(t, before.Items[0].Fulfillments[0].DeliveredQuantity.Equal(after.Items[0].Fulfillments[0].DeliveredQuantity))
	assert.Equal(t, before.Items[0].PurchaseOrderExternalID, after.Items[0].PurchaseOrderExternalID)

	t.Run("posted document is immutable", func(t *testing.T) {
		_, err := f.svc.Post(ctx, after)
		assert.True(t, apperror.IsDocumentPosted(err))

		after.Remark = "changed"
		_, err = f.svc.Update(ctx, after)
		assert.True(t, apperror.IsDocumentPosted(err))

		assert.True(t, apperror.IsDocumentPosted(f.svc.Delete(ctx, docID)))
	})
}

func TestUpdate_DoesNotPropagate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 100)
	poe := f.seedExternal(t, "POE-1", po)

	docID, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 100, 40)))
	require.NoError(t, err)

	do, err := f.svc.GetByID(ctx, docID)
	require.NoError(t, err)
	do.Remark = "late delivery"
	_, err = f.svc.Update(ctx, do)
	require.NoError(t, err)

	stored, err := f.orders.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items[0].Fulfillments, 1)
}

func TestGetDataDeliveryOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 1000)
	poe := f.seedExternal(t, "POE-1", po)

	early := f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 1000, 10))
	early.SupplierDoDate = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	_, err := f.svc.Create(ctx, early)
	require.NoError(t, err)

	late := f.deliveryOrder("DO-2", poe, fulfillmentOf(po, 0, 1000, 10))
	late.SupplierDoDate = time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	_, err = f.svc.Create(ctx, late)
	require.NoError(t, err)

	other := f.deliveryOrder("DO-3", poe, fulfillmentOf(po, 0, 1000, 10))
	other.SupplierID = id.New()
	other.Supplier = nil
	_, err = f.svc.Create(ctx, other)
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		q    DataQuery
		want []string
	}{
		{"all four", DataQuery{No: "DO-2", SupplierID: f.supplier, DateFrom: day(1), DateTo: day(10)}, []string{"DO-2"}},
		{"all four outside range", DataQuery{No: "DO-2", SupplierID: f.supplier, DateFrom: day(1), DateTo: day(9)}, nil},
		{"no and supplier", DataQuery{No: "DO-1", SupplierID: f.supplier}, []string{"DO-1"}},
		{"supplier", DataQuery{SupplierID: f.supplier}, []string{"DO-1", "DO-2"}},
		{"no", DataQuery{No: "DO-3"}, []string{"DO-3"}},
		{"no wins over range", DataQuery{No: "DO-1", DateFrom: day(10), DateTo: day(10)}, []string{"DO-1"}},
		{"date range inclusive", DataQuery{DateFrom: day(10), DateTo: day(10)}, []string{"DO-2"}},
		{"only date from", DataQuery{DateFrom: day(1)}, nil},
		{"nothing", DataQuery{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := f.svc.GetDataDeliveryOrder(ctx, tt.q)
			require.NoError(t, err)
			require.NotNil(t, items)
			nos := make([]string, 0, len(items))
			for _, do := range items {
				nos = append(nos, do.No)
			}
			assert.ElementsMatch(t, tt.want, nos)
		})
	}
}

func TestReadBySupplierAndUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 1000)
	poe := f.seedExternal(t, "POE-1", po)

	for _, no := range []string{"DO-A1", "DO-A2", "DO-B1"} {
		_, err := f.svc.Create(ctx, f.deliveryOrder(no, poe, fulfillmentOf(po, 0, 1000, 10)))
		require.NoError(t, err)
	}

	// another unit of the same supplier
	otherUnit := f.seedOrder(t, "PO-2", 1000)
	otherUnit.UnitID = id.New()
	_, err := f.orders.Update(ctx, otherUnit)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.deliveryOrder("DO-C1", poe, fulfillmentOf(otherUnit, 0, 1000, 10)))
	require.NoError(t, err)

	res, err := f.svc.ReadBySupplierAndUnit(ctx, f.supplier, f.unit, domain.Paging{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalCount)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Size)

	res, err = f.svc.ReadBySupplierAndUnit(ctx, f.supplier, f.unit, domain.Paging{Keyword: "do-a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)

	res, err = f.svc.ReadBySupplierAndUnit(ctx, f.supplier, f.unit, domain.Paging{Size: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	res, err = f.svc.ReadBySupplierAndUnit(ctx, id.New(), f.unit, domain.Paging{})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
}

func TestRead_KeywordMatchesExternalNo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	po := f.seedOrder(t, "PO-1", 1000)
	poe := f.seedExternal(t, "POE-XYZ", po)
	other := f.seedExternal(t, "POE-ABC", po)

	_, err := f.svc.Create(ctx, f.deliveryOrder("DO-1", poe, fulfillmentOf(po, 0, 1000, 10)))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.deliveryOrder("DO-2", other, fulfillmentOf(po, 0, 1000, 10)))
	require.NoError(t, err)

	res, err := f.svc.Read(ctx, domain.Paging{Keyword: "xyz"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "DO-1", res.Items[0].No)

	res, err = f.svc.Read(ctx, domain.Paging{Keyword: "kapas"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
}
