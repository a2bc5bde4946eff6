package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"millerp/internal/config"
	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/i18n"
	"millerp/internal/domain"
	"millerp/internal/domain/master/buyer"
	"millerp/internal/domain/master/lotmachine"
	"millerp/internal/domain/master/machine"
	"millerp/internal/domain/master/product"
	"millerp/internal/domain/production/fabricqc"
	"millerp/internal/domain/production/inspectionlotcolor"
	"millerp/internal/domain/production/kanban"
	"millerp/internal/domain/purchasing/deliveryorder"
	"millerp/internal/domain/purchasing/purchaseorder"
	"millerp/internal/infrastructure/numerator"
	"millerp/internal/infrastructure/storage/postgres"
	"millerp/internal/infrastructure/storage/postgres/docstore"
	"millerp/pkg/logger"
	"millerp/pkg/metrics"
)

// collections lists every store collection the managers touch.
var collections = []string{
	buyer.CollectionName,
	product.CollectionName,
	machine.CollectionName,
	lotmachine.CollectionName,
	kanban.CollectionName,
	fabricqc.CollectionName,
	inspectionlotcolor.CollectionName,
	purchaseorder.CollectionName,
	purchaseorder.ExternalCollectionName,
	deliveryorder.CollectionName,
}

// app holds the wired managers of one CLI invocation.
type app struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *postgres.Pool
	txm  *postgres.TxManager

	buyers      *buyer.Service
	lotMachines *lotmachine.Service
	inspections *inspectionlotcolor.Service
	deliveries  *deliveryorder.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &app{
		cfg:  cfg,
		log:  log,
		pool: pool,
		txm:  postgres.NewTxManager(pool),
	}
	if err := a.wire(); err != nil {
		pool.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	t, err := i18n.New(a.cfg.I18n.Language, nil)
	if err != nil {
		return fmt.Errorf("init translator: %w", err)
	}
	m := metrics.New()

	buyers, err := docstore.New(a.txm, buyer.CollectionName, buyer.New)
	if err != nil {
		return err
	}
	products, err := docstore.New(a.txm, product.CollectionName, product.New)
	if err != nil {
		return err
	}
	machines, err := docstore.New(a.txm, machine.CollectionName, machine.New)
	if err != nil {
		return err
	}
	lotMachines, err := docstore.New(a.txm, lotmachine.CollectionName, lotmachine.New)
	if err != nil {
		return err
	}
	kanbans, err := docstore.New(a.txm, kanban.CollectionName, kanban.New)
	if err != nil {
		return err
	}
	fabricQCs, err := docstore.New(a.txm, fabricqc.CollectionName, fabricqc.New)
	if err != nil {
		return err
	}
	inspections, err := docstore.New(a.txm, inspectionlotcolor.CollectionName, inspectionlotcolor.New)
	if err != nil {
		return err
	}
	orders, err := docstore.New(a.txm, purchaseorder.CollectionName, purchaseorder.New)
	if err != nil {
		return err
	}
	externals, err := docstore.New(a.txm, purchaseorder.ExternalCollectionName, purchaseorder.NewExternal)
	if err != nil {
		return err
	}
	deliveries, err := docstore.New(a.txm, deliveryorder.CollectionName, deliveryorder.New)
	if err != nil {
		return err
	}

	offset := a.cfg.Report.UTCOffsetHours

	a.buyers = buyer.NewService(buyer.Config{
		Collection: buyers,
		Translator: t,
		TxManager:  a.txm,
		Metrics:    m,
	})
	a.lotMachines = lotmachine.NewService(lotmachine.Config{
		Collection: lotMachines,
		Products:   products,
		Machines:   machines,
		Translator: t,
		TxManager:  a.txm,
		Metrics:    m,
	})
	a.inspections = inspectionlotcolor.NewService(inspectionlotcolor.Config{
		Collection:            inspections,
		Kanbans:               kanbans,
		FabricQualityControls: fabricQCs,
		Numerator:             numerator.New(a.pool),
		Translator:            t,
		TxManager:             a.txm,
		Metrics:               m,
		ReportWindowDays:      a.cfg.Report.DefaultWindowDays,
		UTCOffsetHours:        &offset,
	})
	a.deliveries = deliveryorder.NewService(deliveryorder.Config{
		Collection:  deliveries,
		Orders:      orders,
		Externals:   externals,
		Translator:  t,
		TxManager:   a.txm,
		Metrics:     m,
		FanoutLimit: a.cfg.Purchasing.FanoutLimit,
	})

	if a.cfg.Audit.Enabled {
		audit, err := postgres.NewAuditService(a.txm, a.cfg.Audit.CompressThresholdBytes)
		if err != nil {
			return err
		}
		registerAudit(audit, a.buyers.EntityName(), a.buyers.Hooks())
		registerAudit(audit, a.lotMachines.EntityName(), a.lotMachines.Hooks())
		registerAudit(audit, a.inspections.EntityName(), a.inspections.Hooks())
		registerAudit(audit, a.deliveries.EntityName(), a.deliveries.Hooks())
	}
	return nil
}

func registerAudit[T entity.Document](s *postgres.AuditService, entityType string, hooks *domain.HookRegistry[T]) {
	hooks.OnAfterCreate(postgres.AuditHook[T](s, entityType, postgres.AuditActionCreate))
	hooks.OnAfterUpdate(postgres.AuditHook[T](s, entityType, postgres.AuditActionUpdate))
	hooks.OnAfterPost(postgres.AuditHook[T](s, entityType, postgres.AuditActionPost))
	hooks.OnAfterDelete(postgres.AuditHook[T](s, entityType, postgres.AuditActionDelete))
}

func (a *app) migrate(ctx context.Context) error {
	if err := docstore.EnsureSchema(ctx, a.txm, collections...); err != nil {
		return err
	}
	for _, stmt := range []string{numerator.SchemaSQL, postgres.AuditSchemaSQL} {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// context carries the logger, the operator and a request id into managers.
func (a *app) context(ctx context.Context) context.Context {
	ctx = logger.WithLogger(ctx, a.log)
	ctx = appctx.WithUsername(ctx, operator())
	return appctx.NewOperation(ctx)
}

func (a *app) Close(ctx context.Context) {
	a.pool.Close(ctx)
	_ = a.log.Sync()
}

// operator is the name stamped on documents changed by the CLI.
func operator() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "erpctl"
}

// reportLocation mirrors the zone the inspection report runs in.
func (a *app) reportLocation() *time.Location {
	return a.inspections.Location()
}
