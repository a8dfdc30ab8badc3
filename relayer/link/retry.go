package link

import (
	"context"
	"errors"
	"time"

	"github.com/tokenize-x/tx-tools/pkg/retry"

	"github.com/tokenize-x/ibc-relayer/ibc/handler"
)

// classifyRuntimeError implements spec.md §7's runtime error stratum:
// handler-surfaced protocol errors and context cancellation are permanent
// (returned as-is); every other error, driver RPC failures included, is
// treated as transient and wrapped retryable. A handler.Error is
// never retryable: it reflects an on-chain state the relayer already has
// final information about, not a flaky RPC.
func classifyRuntimeError(err error) error {
	if err == nil {
		return nil
	}

	var herr *handler.Error
	if errors.As(err, &herr) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return retry.Retryable(err)
}

// submitWithRetry drives fn through tx-tools' retry.Do, back-off interval
// per spec.md §5 ("sleeping on back-off" is a worker suspension point).
// fn should return classifyRuntimeError(err) so only transient failures
// are retried.
func submitWithRetry(ctx context.Context, interval time.Duration, fn func() error) error {
	return retry.Do(ctx, interval, fn)
}
