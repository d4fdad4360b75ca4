// importctl runs a batch locally or submits it to the worker queue. Local
// mode needs no broker or database: it loads a YAML catalog, reads the rows
// file and prints the batch report as JSON, which is how catalog changes get
// checked before deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/slc-app/invoice-engine/internal/config"
	"github.com/slc-app/invoice-engine/internal/core/domain"
	"github.com/slc-app/invoice-engine/internal/core/ports"
	"github.com/slc-app/invoice-engine/internal/core/usecase"
	"github.com/slc-app/invoice-engine/internal/infrastructure/catalog/yamlfile"
	"github.com/slc-app/invoice-engine/internal/infrastructure/queue/nats"
	"github.com/slc-app/invoice-engine/internal/infrastructure/rowsource/excel"
	"github.com/slc-app/invoice-engine/internal/infrastructure/rowsource/pdftext"
)

func main() {
	var (
		catalogPath = flag.String("catalog", "", "path to the supplier catalog YAML")
		inputPath   = flag.String("input", "", "path to the rows file (xlsx or pdf)")
		format      = flag.String("format", "", "input format: xlsx, xlsx-headers or pdf (default: by extension)")
		amountField = flag.String("amount-field", usecase.DefaultAmountField, "column validated as the accounting amount")
		workers     = flag.Int("workers", 4, "worker pool size")
		submit      = flag.Bool("submit", false, "publish the batch to the queue instead of processing locally")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing -input")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *submit {
		if err := submitBatch(ctx, *inputPath, *format); err != nil {
			log.Fatalf("submit error: %v", err)
		}
		return
	}

	if *catalogPath == "" {
		log.Fatal("missing -catalog")
	}
	result, err := runLocal(ctx, *catalogPath, *inputPath, *format, *amountField, *workers)
	if err != nil {
		log.Fatalf("import error: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}

func runLocal(ctx context.Context, catalogPath, inputPath, format, amountField string, workers int) (*domain.BatchResult, error) {
	catalog, err := yamlfile.NewLoader(catalogPath).LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	source, amount, err := sourceFor(inputPath, format, amountField)
	if err != nil {
		return nil, err
	}
	rows, err := source.ReadRows(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	processor := usecase.NewProcessBatchUseCase(amount, workers)
	result, err := processor.ProcessBatch(ctx, catalog, rows)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func submitBatch(ctx context.Context, inputPath, format string) error {
	cfg := config.Load()
	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return fmt.Errorf("connect queue: %w", err)
	}
	defer queue.Close()

	job := domain.BatchJob{
		BatchID:    uuid.NewString(),
		SourcePath: inputPath,
		Format:     format,
	}
	if err := queue.PublishBatchSubmitted(ctx, job); err != nil {
		return err
	}
	fmt.Println(job.BatchID)
	return nil
}

func sourceFor(inputPath, format, amountField string) (ports.RowSource, string, error) {
	resolved := format
	if resolved == "" {
		resolved = strings.TrimPrefix(filepath.Ext(inputPath), ".")
	}
	switch strings.ToLower(resolved) {
	case "pdf", "ged001":
		return pdftext.NewReader(), usecase.NoAmountField, nil
	case "xlsx-headers":
		return excel.NewReader(nil), amountField, nil
	case "xlsx", "reg010":
		return excel.NewReader(excel.REG010Columns), amountField, nil
	default:
		return nil, "", fmt.Errorf("unsupported input format %q", resolved)
	}
}
