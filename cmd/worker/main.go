package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/slc-app/invoice-engine/internal/bootstrap"
	"github.com/slc-app/invoice-engine/internal/config"
	"github.com/slc-app/invoice-engine/internal/core/domain"
	"github.com/slc-app/invoice-engine/internal/core/ports"
	"github.com/slc-app/invoice-engine/internal/core/usecase"
	"github.com/slc-app/invoice-engine/internal/infrastructure/repository/postgres"
	"github.com/slc-app/invoice-engine/internal/infrastructure/rowsource/excel"
	"github.com/slc-app/invoice-engine/internal/infrastructure/rowsource/pdftext"
	"github.com/slc-app/invoice-engine/internal/observability/logging"
	"github.com/slc-app/invoice-engine/internal/observability/metrics"
)

const serviceName = "invoice-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsHandler(workerMetrics),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	// Batches arrive in bursts when the GED exports overnight; the limiter
	// keeps Postgres and the extraction pool from being slammed all at once.
	limiter := rate.NewLimiter(rate.Limit(cfg.BatchRatePerSec), cfg.BatchBurst)

	logger.Info("worker subscribed", "subject", cfg.NATSSubject, "pool_size", cfg.WorkerPoolSize)
	err = app.Queue.SubscribeBatchSubmitted(ctx, func(handlerCtx context.Context, job domain.BatchJob) error {
		if err := limiter.Wait(handlerCtx); err != nil {
			return err
		}

		jobCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartBatch()
		started := time.Now()
		result, err := processJob(jobCtx, app, cfg, job)
		workerMetrics.FinishBatch(serviceName, time.Since(started), result, err)

		if err != nil {
			logger.Error("batch failed", "batch_id", job.BatchID, "error", err)
			return err
		}
		logger.Info("batch processed",
			"batch_id", job.BatchID,
			"rows", result.Summary.Rows,
			"invoices", result.Summary.Invoices,
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func processJob(ctx context.Context, app *bootstrap.App, cfg config.Config, job domain.BatchJob) (*domain.BatchResult, error) {
	var catalog *domain.CompiledCatalog
	err := app.Executor.Execute(ctx, "postgres.load_catalog", func(ctx context.Context) error {
		var loadErr error
		catalog, loadErr = app.Catalog.LoadCatalog(ctx)
		return loadErr
	}, postgres.ClassifyError)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	source, processor, err := pipelineFor(job, cfg, app)
	if err != nil {
		return nil, err
	}

	rows, err := source.ReadRows(ctx, job.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("read rows from %s: %w", job.SourcePath, err)
	}

	result, err := processor.ProcessBatch(ctx, catalog, rows)
	if err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}
	result.BatchID = job.BatchID

	err = app.Executor.Execute(ctx, "postgres.save_batch", func(ctx context.Context) error {
		return app.Results.SaveBatch(ctx, result)
	}, postgres.ClassifyError)
	if err != nil {
		return result, fmt.Errorf("save batch: %w", err)
	}
	return result, nil
}

// pipelineFor picks the row source and processor for a job. REG010 workbooks
// carry a fixed column layout and a real amount column; GED001 PDFs become
// single raw-text rows with no amount to validate.
func pipelineFor(job domain.BatchJob, cfg config.Config, app *bootstrap.App) (ports.RowSource, ports.BatchProcessor, error) {
	format := job.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(job.SourcePath), ".")
	}

	switch strings.ToLower(format) {
	case "xlsx", "reg010":
		return excel.NewReader(excel.REG010Columns), app.BatchUC, nil
	case "xlsx-headers":
		return excel.NewReader(nil), app.BatchUC, nil
	case "pdf", "ged001":
		processor := usecase.NewProcessBatchUseCase(usecase.NoAmountField, cfg.WorkerPoolSize)
		return pdftext.NewReader(), processor, nil
	default:
		return nil, nil, fmt.Errorf("unsupported batch format %q", job.Format)
	}
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
