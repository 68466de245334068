// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"fmt"
	"math"
	"time"
)

// BackoffDelay returns the wait before the given attempt: zero for the first
// attempt, then initial, 2*initial, 4*initial... capped at maxDelay when maxDelay > 0.
func BackoffDelay(initial time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	if attempt <= 1 || initial <= 0 {
		return 0
	}
	delay := initial
	for i := 2; i < attempt; i++ {
		if (maxDelay > 0 && delay >= maxDelay) || delay > math.MaxInt64/2 {
			break
		}
		delay *= 2
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type callResult struct {
	id  string
	err error
}

// runWithTimeout races fn against a timer. The context handed to fn is
// cancelled when runWithTimeout returns, so a context-aware loser stops; one
// that ignores its context keeps running and its result is dropped.
// A timeout of zero or less disables the timer.
func runWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("mail transport panicked: %v", r)}
			}
		}()
		id, err := fn(callCtx)
		done <- callResult{id: id, err: err}
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case r := <-done:
		return r.id, r.err
	case <-expired:
		return "", fmt.Errorf("%w after %s", ErrAttemptTimeout, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// raceSend runs one send attempt against the attempt timeout.
func raceSend(ctx context.Context, t Transport, msg *Message, timeout time.Duration) (string, error) {
	return runWithTimeout(ctx, timeout, func(ctx context.Context) (string, error) {
		return t.Send(ctx, msg)
	})
}
