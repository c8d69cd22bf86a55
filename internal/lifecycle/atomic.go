package lifecycle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sethvargo/go-retry"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/db"
)

// atomically runs fn in a transaction. Stale compare-and-swaps and busy
// errors roll back and rerun the whole of fn, so preconditions are
// checked again against fresh state. Classified errors pass through;
// anything else becomes a Store error.
func (e *Engine) atomically(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.retryDelay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := db.WithTx(ctx, e.db, fn)
		if retryable(err) {
			e.log.Debug("retrying transaction", "op", op, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case retryable(err):
		e.log.Warn("transaction kept conflicting", "op", op, "attempts", attempt, "error", err)
		return apperr.Conflict("concurrent update, try again")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperr.Store(err)
	}
}

func retryable(err error) bool {
	return errors.Is(err, errStale) || db.IsBusy(err)
}
