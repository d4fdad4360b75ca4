package ports

import (
	"context"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// CatalogSource loads the supplier catalog and compiles it. Loading happens
// once per batch; the compiled catalog is immutable afterwards.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (*domain.CompiledCatalog, error)
}

// RowSource reads extracted table rows from an upstream artifact.
type RowSource interface {
	ReadRows(ctx context.Context, path string) ([]domain.Row, error)
}

// ResultRepository persists produced invoices, extensions and diagnostics.
type ResultRepository interface {
	SaveBatch(ctx context.Context, result *domain.BatchResult) error
}

// MessageQueue publishes/consumes batch submission events.
type MessageQueue interface {
	PublishBatchSubmitted(ctx context.Context, job domain.BatchJob) error
	SubscribeBatchSubmitted(ctx context.Context, handler func(context.Context, domain.BatchJob) error) error
}
