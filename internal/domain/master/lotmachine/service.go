package lotmachine

import (
	"millerp/internal/core/i18n"
	"millerp/internal/core/tx"
	"millerp/internal/domain"
	"millerp/internal/domain/master/machine"
	"millerp/internal/domain/master/product"
	"millerp/pkg/metrics"
)

// Service provides business logic for lot machines.
type Service struct {
	*domain.DocumentService[*LotMachine]
}

// Config holds the service dependencies.
type Config struct {
	Collection domain.Collection[*LotMachine]
	Products   domain.Collection[*product.Product]
	Machines   domain.Collection[*machine.Machine]
	Translator i18n.Translator
	TxManager  tx.Manager
	Metrics    *metrics.Metrics
}

// NewService creates a new lot machine service.
func NewService(cfg Config) *Service {
	t := cfg.Translator
	if t == nil {
		t = i18n.Default()
	}
	v := &Validator{
		coll:     cfg.Collection,
		products: cfg.Products,
		machines: cfg.Machines,
		t:        t,
	}

	return &Service{
		DocumentService: domain.NewDocumentService(domain.DocumentServiceConfig[*LotMachine]{
			Collection: cfg.Collection,
			TxManager:  cfg.TxManager,
			Validate:   v.Validate,
			Query:      Query,
			Metrics:    cfg.Metrics,
			EntityName: "lot_machine",
		}),
	}
}
