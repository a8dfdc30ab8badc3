// Package await is a small polling helper for tests that need to wait on a
// relayed packet reaching some terminal state (delivered, acknowledged,
// timed out) without a fixed sleep. Adapted from the teacher's
// testutil/integration.ChainContext.AwaitState.
package await

import (
	"context"
	"time"

	"github.com/tokenize-x/tx-tools/pkg/retry"
)

const (
	// DefaultTimeout bounds how long State waits overall before giving up.
	DefaultTimeout = 30 * time.Second
)

type options struct {
	timeout      time.Duration
	recheckDelay time.Duration
	checkTimeout time.Duration
}

func defaultOptions() options {
	return options{
		timeout:      DefaultTimeout,
		recheckDelay: 50 * time.Millisecond,
		checkTimeout: 5 * time.Second,
	}
}

// Option configures State.
type Option func(*options)

// WithTimeout sets the overall deadline for State.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

// WithRecheckDelay sets the interval between retries of check.
func WithRecheckDelay(delay time.Duration) Option {
	return func(o *options) { o.recheckDelay = delay }
}

// WithCheckTimeout bounds each individual invocation of check.
func WithCheckTimeout(timeout time.Duration) Option {
	return func(o *options) { o.checkTimeout = timeout }
}

// State polls check until it returns nil or ctx/the overall timeout expires,
// the same retry.Do-driven poll loop the teacher's AwaitState runs against
// a live chain, generalized to whatever condition a relayer test needs to
// observe (a packet delivered, an ack written, a link stopped).
func State(ctx context.Context, check func(ctx context.Context) error, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	retryCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	return retry.Do(retryCtx, o.recheckDelay, func() error {
		checkCtx, checkCancel := context.WithTimeout(retryCtx, o.checkTimeout)
		defer checkCancel()
		if err := check(checkCtx); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
}
