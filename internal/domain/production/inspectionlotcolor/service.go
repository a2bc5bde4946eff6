package inspectionlotcolor

import (
	"context"
	"fmt"
	"time"

	"millerp/internal/core/i18n"
	"millerp/internal/core/id"
	"millerp/internal/core/numerator"
	"millerp/internal/core/tx"
	"millerp/internal/domain"
	"millerp/internal/domain/production/fabricqc"
	"millerp/internal/domain/production/kanban"
	"millerp/pkg/metrics"
)

const (
	// CodePrefix prefixes generated inspection codes: ILC-2026-00001.
	CodePrefix = "ILC"

	DefaultReportWindowDays = 30
	DefaultUTCOffsetHours   = 7
)

// Service provides business logic for lot color inspections.
type Service struct {
	*domain.DocumentService[*InspectionLotColor]
	numerator numerator.Generator
	now       func() time.Time

	windowDays int
	location   *time.Location
}

// Config holds the service dependencies.
type Config struct {
	Collection            domain.Collection[*InspectionLotColor]
	Kanbans               domain.Collection[*kanban.Kanban]
	FabricQualityControls domain.Collection[*fabricqc.FabricQualityControl]
	Numerator             numerator.Generator
	Translator            i18n.Translator
	TxManager             tx.Manager
	Metrics               *metrics.Metrics

	ReportWindowDays int              // Optional, DefaultReportWindowDays when zero
	UTCOffsetHours   *int             // Optional, DefaultUTCOffsetHours when nil
	Now              func() time.Time // Optional, for tests
}

// NewService creates a new inspection service.
func NewService(cfg Config) *Service {
	t := cfg.Translator
	if t == nil {
		t = i18n.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	window := cfg.ReportWindowDays
	if window <= 0 {
		window = DefaultReportWindowDays
	}
	offset := DefaultUTCOffsetHours
	if cfg.UTCOffsetHours != nil {
		offset = *cfg.UTCOffsetHours
	}

	v := &Validator{
		kanbans:   cfg.Kanbans,
		fabricQCs: cfg.FabricQualityControls,
		t:         t,
		now:       now,
	}

	return &Service{
		DocumentService: domain.NewDocumentService(domain.DocumentServiceConfig[*InspectionLotColor]{
			Collection: cfg.Collection,
			TxManager:  cfg.TxManager,
			Validate:   v.Validate,
			Query:      Query,
			Metrics:    cfg.Metrics,
			EntityName: "inspection_lot_color",
		}),
		numerator:  cfg.Numerator,
		now:        now,
		windowDays: window,
		location:   time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*3600),
	}
}

// Create validates the inspection, generates its code and inserts it.
func (s *Service) Create(ctx context.Context, ilc *InspectionLotColor) (docID id.ID, err error) {
	defer func(started time.Time) { s.Observe("create", started, err) }(time.Now())

	valid, err := s.Validate(ctx, ilc)
	if err != nil {
		return id.Nil(), err
	}

	// Generated outside the insert transaction: a failed insert leaves a gap.
	code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(CodePrefix),
		&numerator.Options{Strategy: numerator.StrategyCached}, s.now())
	if err != nil {
		return id.Nil(), fmt.Errorf("generate inspection code: %w", err)
	}
	valid.Code = code

	return s.Insert(ctx, valid)
}

// Location is the time zone report dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.location
}
