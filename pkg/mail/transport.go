// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
)

// Transport is one provider session. Send delivers a single message and
// returns the provider message ID. Close releases whatever the session holds.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
	Close() error
}

// Verifier is implemented by sessions that can check connectivity before the
// first send.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Provider hands out sessions. Every submission takes its own session.
type Provider interface {
	Name() string
	NewSession() Transport
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(cfg config.Mail, log *zap.SugaredLogger) (Provider, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	switch cfg.Provider {
	case config.ProviderSMTP, "":
		return NewSMTPProvider(cfg, log), nil
	case config.ProviderResend:
		return NewResendProvider(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
