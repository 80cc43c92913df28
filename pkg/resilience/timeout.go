package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a context bounded by timeout. A non-positive
// timeout runs fn directly. fn keeps running in its goroutine after the
// deadline fires; it is expected to honor ctx and return promptly.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	bounded, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(bounded)
	}()

	select {
	case err := <-errCh:
		return err
	case <-bounded.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s exceeded %v: %w", name, timeout, context.DeadlineExceeded)
	}
}
