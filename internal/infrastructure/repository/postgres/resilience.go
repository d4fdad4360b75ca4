package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"

	"github.com/slc-app/invoice-engine/internal/core/domain"
	"github.com/slc-app/invoice-engine/internal/infrastructure/resilience"
)

// ClassifyError maps database failures for the resilience executor. Catalog
// compile failures are configuration errors and must not be retried; broken
// connections are worth another attempt.
func ClassifyError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if domain.IsKind(err, domain.ErrConfiguration) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}
