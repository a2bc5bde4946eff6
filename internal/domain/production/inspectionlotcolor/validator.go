package inspectionlotcolor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"millerp/internal/core/apperror"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/i18n"
	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/production/fabricqc"
	"millerp/internal/domain/production/kanban"
)

const entityKey = "InspectionLotColor"

// Validator checks inspections and resolves kanban and fabric QC references.
type Validator struct {
	kanbans   domain.Collection[*kanban.Kanban]
	fabricQCs domain.Collection[*fabricqc.FabricQualityControl]
	t         i18n.Translator
	now       func() time.Time
}

// Validate returns the inspection with kanban embedded and fabric QC code
// copied, or a validation error with every field error.
func (v *Validator) Validate(ctx context.Context, ilc *InspectionLotColor) (*InspectionLotColor, error) {
	var (
		kb      *kanban.Kanban
		qc      *fabricqc.FabricQualityControl
		qcFound bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		kb, _, err = domain.Lookup(gctx, v.kanbans, ilc.KanbanID)
		return err
	})
	g.Go(func() (err error) {
		qc, qcFound, err = domain.Lookup(gctx, v.fabricQCs, ilc.FabricQualityControlID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve inspection references: %w", err)
	}

	errs := apperror.FieldErrors{}
	switch {
	case id.IsNil(ilc.FabricQualityControlID):
		errs.Set("fabricQualityControlId", v.required("fabricQualityControlId", "FabricQualityControlId"))
	case !qcFound:
		errs.Set("fabricQualityControlId", v.t.Translate(entityKey+".fabricQualityControlId.notFound",
			"%s is not found", v.label("fabricQualityControlId", "FabricQualityControlId")))
	}

	if ilc.Date.IsZero() {
		errs.Set("date", v.required("date", "Date"))
	} else if ilc.Date.After(v.now()) {
		errs.Set("date", v.t.Translate(entityKey+".date.isGreater", "%s is greater than today", v.label("date", "Date")))
	}

	if len(ilc.Items) == 0 {
		errs.Set("items", v.required("items", "Items"))
	} else {
		itemErrs := make([]apperror.FieldErrors, 0, len(ilc.Items))
		for _, item := range ilc.Items {
			itemErrs = append(itemErrs, v.validateItem(item))
		}
		errs.SetList("items", itemErrs)
	}

	if !errs.Empty() {
		return nil, apperror.NewValidationFields("data does not pass validation", errs)
	}

	if kb != nil {
		ilc.Kanban = kb
		ilc.KanbanID = kb.ID
	}
	ilc.FabricQualityControlID = qc.ID
	ilc.FabricQualityControlCode = qc.Code
	ilc.StampBy(appctx.GetUsername(ctx), entity.DefaultAgent)
	return ilc, nil
}

func (v *Validator) validateItem(item Item) apperror.FieldErrors {
	errs := apperror.FieldErrors{}
	if item.PcsNo == "" {
		errs.Set("pcsNo", v.required("items.pcsNo", "Pcs No"))
	}
	if item.Grade == "" {
		errs.Set("grade", v.required("items.grade", "Grade"))
	}
	if item.Lot == "" {
		errs.Set("lot", v.required("items.lot", "Lot"))
	}
	if item.Status == "" {
		errs.Set("status", v.required("items.status", "Status"))
	}
	return errs
}

func (v *Validator) label(field, fallback string) string {
	return i18n.Field(v.t, entityKey, field, fallback)
}

func (v *Validator) required(field, fallback string) string {
	return v.t.Translate(entityKey+"."+field+".isRequired", "%s is required", v.label(field, fallback))
}
