// Package timeout races an operation against a deadline.
package timeout

import (
	"context"
	"fmt"
	"time"

	"github.com/postcraft/postcraft/types"
)

// Do runs fn and races its completion against d. If the deadline fires
// first, the result is a TIMEOUT error carrying the configured duration
// and the in-flight result is discarded.
//
// fn receives a context that is cancelled when the deadline fires, so
// context-aware operations (outbound HTTP calls in particular) are
// aborted instead of leaking.
func Do[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		val, err := fn(opCtx)
		done <- outcome{val: val, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case out := <-done:
		return out.val, out.err
	case <-timer.C:
		return zero, types.NewError(types.ErrTimeout,
			fmt.Sprintf("timeout after %dms", d.Milliseconds())).
			WithRetryable(true)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
