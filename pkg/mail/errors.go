// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"errors"
	"fmt"
)

var (
	// ErrAttemptTimeout marks an attempt that lost the race against its time budget.
	ErrAttemptTimeout = errors.New("mail send attempt timed out")
	// ErrDeliveryExhausted wraps the last attempt error once every attempt failed.
	ErrDeliveryExhausted = errors.New("mail delivery exhausted")
	// ErrSessionClosed is returned by sends on a session that was already closed.
	ErrSessionClosed = errors.New("mail session closed")
)

// TransportError is a failure reported by the provider: dial, auth, protocol
// or an HTTP error status.
type TransportError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed with status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
