// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PairOutcome holds the independent results of the user confirmation and the
// admin notification.
type PairOutcome struct {
	User  Outcome
	Admin Outcome
}

// PairSender delivers a confirmation and a notification for one submission.
type PairSender interface {
	SendPair(ctx context.Context, user, admin *Message) PairOutcome
}

// Sequencer sends the two messages of a submission over one session. A failed
// user confirmation never prevents the admin notification.
type Sequencer struct {
	provider  Provider
	deliverer *Deliverer
	log       *zap.SugaredLogger
	verify    bool
}

var _ PairSender = (*Sequencer)(nil)

func NewSequencer(provider Provider, deliverer *Deliverer, log *zap.SugaredLogger) *Sequencer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sequencer{
		provider:  provider,
		deliverer: deliverer,
		log:       log.Named("sequencer"),
	}
}

// WithVerify makes every pair check the session before the first send.
func (s *Sequencer) WithVerify(verify bool) *Sequencer {
	s.verify = verify
	return s
}

func (s *Sequencer) Provider() Provider {
	return s.provider
}

func (s *Sequencer) SendPair(ctx context.Context, user, admin *Message) PairOutcome {
	session := s.provider.NewSession()
	defer func() {
		if err := session.Close(); err != nil {
			s.log.Warnw("Closing mail session failed", "provider", s.provider.Name(), "error", err)
		}
	}()

	if s.verify {
		s.verifySession(ctx, session)
	}

	var out PairOutcome
	out.User = s.deliverer.Deliver(ctx, session, user)
	out.Admin = s.deliverer.Deliver(ctx, session, admin)

	s.log.Infow("Contact notifications processed",
		"provider", s.provider.Name(),
		"userSent", out.User.Sent(),
		"userAttempts", out.User.Attempts,
		"adminSent", out.Admin.Sent(),
		"adminAttempts", out.Admin.Attempts)
	return out
}

func (s *Sequencer) verifySession(ctx context.Context, session Transport) {
	v, ok := session.(Verifier)
	if !ok {
		return
	}
	if err := verifyWithin(ctx, v, s.deliverer.Policy().AttemptTimeout); err != nil {
		s.log.Warnw("Mail connection verification failed, continuing with delivery",
			"provider", s.provider.Name(), "error", err)
		return
	}
	s.log.Debugw("Mail connection verified", "provider", s.provider.Name())
}

func verifyWithin(ctx context.Context, v Verifier, timeout time.Duration) error {
	_, err := runWithTimeout(ctx, timeout, func(ctx context.Context) (string, error) {
		return "", v.Verify(ctx)
	})
	return err
}

// ErrNoConnectionCheck is returned by CheckConnection for providers whose
// sessions cannot be verified ahead of a send.
var ErrNoConnectionCheck = errors.New("provider has no connection check")

// CheckConnection opens a fresh session on p, verifies it within timeout and
// closes it again.
func CheckConnection(ctx context.Context, p Provider, timeout time.Duration) error {
	session := p.NewSession()
	defer func() { _ = session.Close() }()

	v, ok := session.(Verifier)
	if !ok {
		return ErrNoConnectionCheck
	}
	return verifyWithin(ctx, v, timeout)
}
