package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// ProcessBatchUseCase runs rows through normalize → classify → extract on a
// fixed-size worker pool. Rows are independent; the compiled catalog is the
// only shared state and is read-only for the batch's duration.
type ProcessBatchUseCase struct {
	normalizer *Normalizer
	classifier *Classifier
	extractor  *Extractor
	workers    int
}

func NewProcessBatchUseCase(amountField string, workers int) *ProcessBatchUseCase {
	if workers <= 0 {
		workers = 4
	}
	return &ProcessBatchUseCase{
		normalizer: NewNormalizer(amountField),
		classifier: NewClassifier(),
		extractor:  NewExtractor(),
		workers:    workers,
	}
}

// ProcessBatch produces exactly one result entry per input row, in input
// order, regardless of parallelism. Cancellation stops dispatching further
// rows; rows never dispatched are reported as not_processed. Only a missing
// catalog is an error: per-row conditions live in the diagnostics.
func (uc *ProcessBatchUseCase) ProcessBatch(ctx context.Context, catalog *domain.CompiledCatalog, rows []domain.Row) (*domain.BatchResult, error) {
	if catalog == nil || len(catalog.Suppliers) == 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "process batch", errors.New("catalog is empty"))
	}

	results := make([]domain.RowResult, len(rows))

	workers := uc.workers
	if workers > len(rows) {
		workers = len(rows)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = uc.processRow(catalog, rows[i])
			}
		}()
	}

dispatch:
	for i := range rows {
		select {
		case <-ctx.Done():
			break dispatch
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	for i := range results {
		if results[i].Outcome == "" {
			results[i] = domain.RowResult{
				Ref:     rows[i].Ref(),
				Outcome: domain.OutcomeNotProcessed,
				Diagnostic: domain.Diagnostic{
					Ref:     rows[i].Ref(),
					Outcome: domain.OutcomeNotProcessed,
				},
			}
		}
	}

	batch := &domain.BatchResult{Results: results}
	batch.Summarize()
	return batch, nil
}

func (uc *ProcessBatchUseCase) processRow(catalog *domain.CompiledCatalog, row domain.Row) domain.RowResult {
	ref := row.Ref()

	normalized, rejection := uc.normalizer.Normalize(row)
	if rejection != nil {
		return domain.RowResult{
			Ref:     ref,
			Outcome: domain.OutcomeRejectedNormalization,
			Diagnostic: domain.Diagnostic{
				Ref:          ref,
				Outcome:      domain.OutcomeRejectedNormalization,
				RejectReason: rejection.Reason,
			},
		}
	}

	supplier, candidates := uc.classifier.Classify(normalized, catalog)
	if supplier == nil {
		return domain.RowResult{
			Ref:     ref,
			Outcome: domain.OutcomeUnclassified,
			Diagnostic: domain.Diagnostic{
				Ref:     ref,
				Outcome: domain.OutcomeUnclassified,
			},
		}
	}

	invoice, extension, report := uc.extractor.Extract(normalized, supplier)

	outcome := domain.OutcomeExtracted
	if report.Gaps() {
		outcome = domain.OutcomePartial
	}

	diag := domain.Diagnostic{
		Ref:        ref,
		Outcome:    outcome,
		SupplierID: supplier.ID,
		Filled:     report.Filled,
		Unfilled:   report.Unfilled,
		Notes:      report.Notes,
	}
	if len(candidates) > 1 {
		diag.Candidates = candidates
	}

	return domain.RowResult{
		Ref:        ref,
		Outcome:    outcome,
		Invoice:    invoice,
		Extension:  extension,
		Diagnostic: diag,
	}
}
