package deliveryorder

import (
	"context"
	"fmt"
	"time"

	"millerp/internal/core/apperror"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/i18n"
	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

const entityKey = "DeliveryOrder"

// Validator checks delivery orders. Errors of items are reported as a list
// parallel to Items, each with a list parallel to its Fulfillments.
type Validator struct {
	coll domain.Collection[*DeliveryOrder]
	t    i18n.Translator
	now  func() time.Time
}

// Validate returns the normalized, stamped delivery order or a validation
// error with every field error.
func (v *Validator) Validate(ctx context.Context, do *DeliveryOrder) (*DeliveryOrder, error) {
	normalize(do)

	_, duplicate, err := v.coll.SingleOrDefault(ctx, filter.AllOf(
		filter.Ne(filter.FieldID, do.ID),
		filter.Eq("no", do.No),
	))
	if err != nil {
		return nil, fmt.Errorf("check delivery order no: %w", err)
	}

	errs := apperror.FieldErrors{}
	if do.No == "" {
		errs.Set("no", v.msg("no.isRequired", "%s is required", "no", "No"))
	} else if duplicate {
		errs.Set("no", v.msg("no.isExists", "%s is already exists", "no", "No"))
	}

	if do.Date.IsZero() {
		errs.Set("date", v.msg("date.isRequired", "%s is required", "date", "Date"))
	} else if do.Date.After(v.now()) {
		errs.Set("date", v.msg("date.isGreater", "%s is greater than today", "date", "Date"))
	}

	if do.SupplierDoDate.IsZero() {
		errs.Set("supplierDoDate", v.msg("supplierDoDate.isRequired", "%s is required", "supplierDoDate", "SupplierDoDate"))
	}

	if id.IsNil(do.SupplierID) {
		errs.Set("supplier", v.msg("supplier.name.isRequired", "%s is required", "supplier.name", "NameSupplier"))
	}

	if len(do.Items) == 0 {
		errs.Set("items", v.msg("items.isRequired", "%s is required", "items.name", "Items"))
	} else {
		errs.SetList("items", v.validateItems(do.Items))
	}

	if !errs.Empty() {
		return nil, apperror.NewValidationFields("data does not pass validation", errs)
	}

	do.StampBy(appctx.GetUsername(ctx), entity.DefaultAgent)
	return do, nil
}

func (v *Validator) validateItems(items []Item) []apperror.FieldErrors {
	out := make([]apperror.FieldErrors, 0, len(items))
	for _, item := range items {
		itemErrs := apperror.FieldErrors{}
		if id.IsNil(item.PurchaseOrderExternalID) {
			itemErrs.Set("purchaseOrderExternal",
				v.msg("items.purchaseOrderExternal.isRequired", "%s is required", "items.purchaseOrderExternal", "PurchaseOrderExternal"))
		}

		fulfillments := make([]apperror.FieldErrors, 0, len(item.Fulfillments))
		for _, f := range item.Fulfillments {
			fulfillments = append(fulfillments, v.validateFulfillment(f))
		}
		itemErrs.SetList("fulfillments", fulfillments)

		out = append(out, itemErrs)
	}
	return out
}

func (v *Validator) validateFulfillment(f Fulfillment) apperror.FieldErrors {
	errs := apperror.FieldErrors{}
	if id.IsNil(f.PurchaseOrderID) {
		errs.Set("purchaseOrder",
			v.msg("items.fulfillments.purchaseOrder.isRequired", "%s is required", "items.fulfillments.purchaseOrder", "PurchaseOrder"))
	}
	if id.IsNil(f.ProductID) {
		errs.Set("product",
			v.msg("items.fulfillments.product.isRequired", "%s is required", "items.fulfillments.product", "Product"))
	}

	switch {
	case !f.DeliveredQuantity.IsPositive():
		errs.Set("deliveredQuantity", v.msg("items.fulfillments.deliveredQuantity.isRequired", "%s is required or not 0",
			"items.fulfillments.deliveredQuantity", "DeliveredQuantity"))
	case f.DeliveredQuantity.GreaterThan(f.PurchaseOrderQuantity):
		errs.Set("deliveredQuantity", v.msg("items.fulfillments.deliveredQuantity.isGreater", "%s is greater than purchaseOrderQuantity",
			"items.fulfillments.deliveredQuantity", "DeliveredQuantity"))
	}
	return errs
}

// msg translates DeliveryOrder.<key> with the translated label DeliveryOrder.<field>._ as argument.
func (v *Validator) msg(key, fallback, field, label string) string {
	return v.t.Translate(entityKey+"."+key, fallback, i18n.Field(v.t, entityKey, field, label))
}

// normalize fills reference ids from embedded snapshots when only the snapshot was sent.
func normalize(do *DeliveryOrder) {
	if do.Supplier != nil {
		if id.IsNil(do.SupplierID) {
			do.SupplierID = do.Supplier.ID
		}
		do.Supplier.ID = do.SupplierID
	}
	for i := range do.Items {
		item := &do.Items[i]
		if id.IsNil(item.PurchaseOrderExternalID) && item.PurchaseOrderExternal != nil {
			item.PurchaseOrderExternalID = item.PurchaseOrderExternal.ID
		}
		for j := range item.Fulfillments {
			f := &item.Fulfillments[j]
			if id.IsNil(f.PurchaseOrderID) && f.PurchaseOrder != nil {
				f.PurchaseOrderID = f.PurchaseOrder.ID
			}
			if id.IsNil(f.ProductID) {
				f.ProductID = f.Product.ID
			}
		}
	}
}
