package buyer

import (
	"context"
	"fmt"

	"millerp/internal/core/apperror"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/i18n"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
)

const entityKey = "Buyer"

// Validator checks buyers against the store.
type Validator struct {
	coll domain.Collection[*Buyer]
	t    i18n.Translator
}

// NewValidator creates a buyer validator.
func NewValidator(coll domain.Collection[*Buyer], t i18n.Translator) *Validator {
	return &Validator{coll: coll, t: t}
}

// Validate returns the stamped buyer or a validation error with every field error.
func (v *Validator) Validate(ctx context.Context, b *Buyer) (*Buyer, error) {
	duplicate, found, err := v.coll.SingleOrDefault(ctx, filter.AllOf(
		filter.Ne(filter.FieldID, b.ID),
		filter.Eq("code", b.Code),
		filter.NotDeleted(),
	))
	if err != nil {
		return nil, fmt.Errorf("check buyer code: %w", err)
	}

	errs := apperror.FieldErrors{}
	if b.Code == "" {
		errs.Set("code", v.required("code", "Code"))
	} else if found && duplicate != nil {
		errs.Set("code", v.t.Translate("Buyer.code.isExists", "%s is already exists", v.label("code", "Code")))
	}

	if b.Name == "" {
		errs.Set("name", v.required("name", "Name"))
	}

	if _, ok := b.Tempo.Int(); !ok {
		errs.Set("tempo", v.t.Translate("Buyer.tempo.isNumeric", "%s must be numeric", v.label("tempo", "Tempo")))
	}

	if b.Country == "" {
		errs.Set("country", v.required("country", "Country"))
	}

	if !errs.Empty() {
		return nil, apperror.NewValidationFields("data does not pass validation", errs)
	}

	b.StampBy(appctx.GetUsername(ctx), entity.DefaultAgent)
	return b, nil
}

func (v *Validator) label(field, fallback string) string {
	return i18n.Field(v.t, entityKey, field, fallback)
}

func (v *Validator) required(field, fallback string) string {
	return v.t.Translate(entityKey+"."+field+".isRequired", "%s is required", v.label(field, fallback))
}
