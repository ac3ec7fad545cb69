package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/metrics"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// withRetry runs attempt until it succeeds, fails with a non-conflict error or
// exhausts the retry budget. Each attempt must re-resolve and re-read everything
// it decides on.
func (s *Service) withRetry(ctx context.Context, op string, attempt func(ctx context.Context) error) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.initialInterval
	expBackoff.MaxInterval = 40 * s.initialInterval
	expBackoff.MaxElapsedTime = 0

	tries := 0
	err := backoff.Retry(func() error {
		tries++
		if tries > 1 {
			metrics.LedgerRetries.Inc()
			s.logger.Warn("retrying after conflicting write", zap.String("operation", op), zap.Int("attempt", tries))
		}
		err := attempt(ctx)
		if err == nil || errors.Is(err, recordstore.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(expBackoff, s.maxRetries), ctx))

	if err != nil {
		return translateErr(op, err)
	}
	return nil
}

// translateErr maps record store failures onto the domain error taxonomy.
// Domain errors raised by the ledger itself pass through unchanged.
func translateErr(op string, err error) error {
	switch {
	case errors.Is(err, recordstore.ErrConflict):
		return fmt.Errorf("%s: %w: %v", op, models.ErrTransactionAborted, err)
	case errors.Is(err, recordstore.ErrNotFound):
		return fmt.Errorf("%s: %w: %v", op, models.ErrNotFound, err)
	case errors.Is(err, recordstore.ErrUnavailable):
		return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
	default:
		return err
	}
}

// observe counts one ledger operation by outcome.
func observe(op string, err error) {
	metrics.LedgerOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInsufficientQuantity):
		return metrics.ResultInvalid
	case errors.Is(err, models.ErrNotFound):
		return metrics.ResultMissing
	case errors.Is(err, models.ErrTransactionAborted):
		return metrics.ResultAborted
	default:
		return metrics.ResultError
	}
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), recordstore.ErrConflict)
}
