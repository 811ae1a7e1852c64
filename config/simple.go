package simple

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hwdepot/rigbuilder/internal/build"
	"github.com/hwdepot/rigbuilder/internal/catalog"
	"github.com/hwdepot/rigbuilder/internal/checkout"
	"github.com/hwdepot/rigbuilder/internal/logging"
	"github.com/hwdepot/rigbuilder/internal/orders"
	localrepo "github.com/hwdepot/rigbuilder/internal/repositories/local"
	pgrepo "github.com/hwdepot/rigbuilder/internal/repositories/postgres"
	"github.com/hwdepot/rigbuilder/internal/setup"
	"github.com/hwdepot/rigbuilder/internal/stocktake"
	"github.com/hwdepot/rigbuilder/internal/storage"
	"github.com/hwdepot/rigbuilder/internal/storage/local"
	"github.com/hwdepot/rigbuilder/internal/storage/memory"
	"github.com/hwdepot/rigbuilder/internal/storage/postgres"
	"github.com/hwdepot/rigbuilder/internal/storage/s3"
)

// App holds the services one CLI invocation works with.
type App struct {
	Config   setup.Config
	Logger   *slog.Logger
	Catalog  *catalog.Catalog
	Store    storage.KeyValue
	Builder  *build.Builder
	Checkout *checkout.Service

	pg        *postgres.Store
	publisher *orders.NATSPublisher
}

// Open wires the catalog, the configured storage backend, the builder
// (hydrated from the saved snapshot) and the checkout service.
func Open(ctx context.Context, cfg setup.Config, logger *slog.Logger) (*App, error) {
	logger = logging.Ensure(logger).With("component", "config.simple")

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog.NewEmbedded(),
	}

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Store = store
	logger.Debug("storage opened", "backend", cfg.Storage.Backend, "key", cfg.StateKey)

	app.Builder = build.NewBuilder(store, cfg.StateKey, logger.With("service", "build"))
	app.Builder.Load(ctx)

	fee, err := cfg.DeliveryFee()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Checkout = &checkout.Service{
		Logger:      logger.With("service", "checkout"),
		Store:       store,
		Key:         cfg.StateKey,
		DeliveryFee: fee,
	}
	return app, nil
}

func (a *App) openStore(ctx context.Context) (storage.KeyValue, error) {
	cfg := a.Config.Storage
	switch cfg.Backend {
	case storage.BackendFile, "":
		return &local.FileStore{BaseDir: a.Config.StateDir}, nil
	case storage.BackendMemory:
		a.Logger.Warn("memory storage does not outlive this process")
		return memory.New(), nil
	case storage.BackendPostgres:
		pg, err := a.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case storage.BackendS3:
		return s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func (a *App) postgres(ctx context.Context) (*postgres.Store, error) {
	if a.pg != nil {
		return a.pg, nil
	}
	pg, err := postgres.Open(ctx, a.Config.Storage.PostgresDSN)
	if err != nil {
		return nil, err
	}
	a.pg = pg
	return pg, nil
}

// Orders returns the order service, connecting to NATS when a URL is
// configured.
func (a *App) Orders() (*orders.Service, error) {
	svc := &orders.Service{
		Logger:   a.Logger.With("service", "orders"),
		Archive:  &localrepo.LocalOrderArchive{BaseDir: a.Config.Orders.Dir},
		Currency: a.Config.Checkout.Currency,
	}
	if a.Config.Orders.NATSURL == "" {
		return svc, nil
	}
	if a.publisher == nil {
		publisher, err := orders.ConnectNATS(a.Config.Orders.NATSURL, a.Config.Orders.NATSSubject)
		if err != nil {
			return nil, err
		}
		a.publisher = publisher
	}
	svc.Publisher = a.publisher
	return svc, nil
}

// Stocktake returns the stock-take service for the configured backend.
func (a *App) Stocktake(ctx context.Context) (*stocktake.Service, error) {
	svc := &stocktake.Service{Logger: a.Logger.With("service", "stocktake")}
	switch a.Config.Stock.Backend {
	case storage.BackendFile, "":
		svc.Stock = &localrepo.LocalStockRepository{BaseDir: a.Config.Stock.Dir}
		svc.Audit = &localrepo.LocalAuditLog{BaseDir: filepath.Join(a.Config.Stock.Dir, "audit")}
	case storage.BackendPostgres:
		pg, err := a.postgres(ctx)
		if err != nil {
			return nil, err
		}
		if err := a.attachPostgresStock(svc, pg.DB()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown stock backend %q", a.Config.Stock.Backend)
	}
	return svc, nil
}

func (a *App) attachPostgresStock(svc *stocktake.Service, db *sql.DB) error {
	stock, err := pgrepo.NewStockRepository(db)
	if err != nil {
		return err
	}
	audit, err := pgrepo.NewAuditLog(db)
	if err != nil {
		return err
	}
	svc.Stock = stock
	svc.Audit = audit
	return nil
}

// Close releases database and NATS connections.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
		a.publisher = nil
	}
	if a.pg != nil {
		errs = append(errs, a.pg.Close())
		a.pg = nil
	}
	return errors.Join(errs...)
}
