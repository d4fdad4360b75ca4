package ports

import (
	"context"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// BatchProcessor is the inbound contract for running one batch of rows
// against a compiled catalog.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, catalog *domain.CompiledCatalog, rows []domain.Row) (*domain.BatchResult, error)
}
