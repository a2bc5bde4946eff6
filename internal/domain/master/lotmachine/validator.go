package lotmachine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"millerp/internal/core/apperror"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/i18n"
	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
	"millerp/internal/domain/master/machine"
	"millerp/internal/domain/master/product"
)

const entityKey = "LotMachine"

// Validator checks lot machines and resolves their references.
type Validator struct {
	coll     domain.Collection[*LotMachine]
	products domain.Collection[*product.Product]
	machines domain.Collection[*machine.Machine]
	t        i18n.Translator
}

// Validate returns the lot machine with product and machine embedded,
// or a validation error with every field error.
func (v *Validator) Validate(ctx context.Context, lm *LotMachine) (*LotMachine, error) {
	var (
		prod      *product.Product
		mach      *machine.Machine
		prodFound bool
		machFound bool
		duplicate bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		prod, prodFound, err = domain.Lookup(gctx, v.products, lm.ProductID)
		return err
	})
	g.Go(func() (err error) {
		mach, machFound, err = domain.Lookup(gctx, v.machines, lm.MachineID)
		return err
	})
	g.Go(func() (err error) {
		if lm.Lot == "" {
			return nil
		}
		_, duplicate, err = v.coll.SingleOrDefault(gctx, filter.AllOf(
			filter.Ne(filter.FieldID, lm.ID),
			filter.Eq("productId", lm.ProductID),
			filter.Eq("machineId", lm.MachineID),
			filter.Eq("lot", lm.Lot),
			filter.NotDeleted(),
		))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve lot machine references: %w", err)
	}

	errs := apperror.FieldErrors{}
	switch {
	case id.IsNil(lm.ProductID):
		errs.Set("product", v.required("product", "Product"))
	case !prodFound:
		errs.Set("product", v.notFound("product", "Product"))
	}

	switch {
	case id.IsNil(lm.MachineID):
		errs.Set("machine", v.required("machine", "Machine"))
	case !machFound:
		errs.Set("machine", v.notFound("machine", "Machine"))
	}

	if lm.Lot == "" {
		errs.Set("lot", v.required("lot", "Lot"))
	} else if duplicate {
		errs.Set("lot", v.t.Translate(entityKey+".lot.isExists", "%s is already exists", v.label("lot", "Lot")))
	}

	if !errs.Empty() {
		return nil, apperror.NewValidationFields("data does not pass validation", errs)
	}

	lm.Product = prod
	lm.Machine = mach
	lm.StampBy(appctx.GetUsername(ctx), entity.DefaultAgent)
	return lm, nil
}

func (v *Validator) label(field, fallback string) string {
	return i18n.Field(v.t, entityKey, field, fallback)
}

func (v *Validator) required(field, fallback string) string {
	return v.t.Translate(entityKey+"."+field+".isRequired", "%s is required", v.label(field, fallback))
}

func (v *Validator) notFound(field, fallback string) string {
	return v.t.Translate(entityKey+"."+field+".notFound", "%s is not found", v.label(field, fallback))
}
