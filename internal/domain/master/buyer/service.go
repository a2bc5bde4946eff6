package buyer

import (
	"millerp/internal/core/i18n"
	"millerp/internal/core/tx"
	"millerp/internal/domain"
	"millerp/pkg/metrics"
)

// Service provides business logic for buyers.
type Service struct {
	*domain.DocumentService[*Buyer]
	validator *Validator
}

// Config holds the service dependencies.
type Config struct {
	Collection domain.Collection[*Buyer]
	Translator i18n.Translator
	TxManager  tx.Manager       // Optional
	Metrics    *metrics.Metrics // Optional
}

// NewService creates a new buyer service.
func NewService(cfg Config) *Service {
	t := cfg.Translator
	if t == nil {
		t = i18n.Default()
	}
	validator := NewValidator(cfg.Collection, t)

	base := domain.NewDocumentService(domain.DocumentServiceConfig[*Buyer]{
		Collection: cfg.Collection,
		TxManager:  cfg.TxManager,
		Validate:   validator.Validate,
		Query:      Query,
		Metrics:    cfg.Metrics,
		EntityName: "buyer",
	})

	return &Service{
		DocumentService: base,
		validator:       validator,
	}
}
