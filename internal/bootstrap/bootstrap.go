package bootstrap

import (
	"context"
	"fmt"

	"github.com/slc-app/invoice-engine/internal/config"
	"github.com/slc-app/invoice-engine/internal/core/ports"
	"github.com/slc-app/invoice-engine/internal/core/usecase"
	"github.com/slc-app/invoice-engine/internal/infrastructure/catalog/yamlfile"
	"github.com/slc-app/invoice-engine/internal/infrastructure/queue/nats"
	"github.com/slc-app/invoice-engine/internal/infrastructure/repository/postgres"
	"github.com/slc-app/invoice-engine/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Catalog  ports.CatalogSource
	Results  ports.ResultRepository
	BatchUC  ports.BatchProcessor
	Executor *resilience.Executor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	catalogRepo := postgres.NewCatalogRepository(db)
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure catalog schema: %w", err)
	}
	resultRepo := postgres.NewResultRepository(db)
	if err := resultRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure result schema: %w", err)
	}

	// The YAML file, when configured, takes precedence over the database
	// catalog. Deployments without Postgres-managed suppliers ship a file.
	var catalog ports.CatalogSource = catalogRepo
	if cfg.CatalogFile != "" {
		catalog = yamlfile.NewLoader(cfg.CatalogFile)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	batchUC := usecase.NewProcessBatchUseCase(cfg.AmountField, cfg.WorkerPoolSize)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Catalog:  catalog,
		Results:  resultRepo,
		BatchUC:  batchUC,
		Executor: executor,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
