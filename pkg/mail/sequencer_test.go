// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer(provider *fakeProvider) *Sequencer {
	d := NewDeliverer(RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond, AttemptTimeout: time.Second}, provider.name, nil).
		WithSleeper((&recordingSleeper{}).Sleep)
	return NewSequencer(provider, d, nil)
}

func TestSendPair_BothSent(t *testing.T) {
	tr := newFakeTransport(alwaysSucceed)
	provider := &fakeProvider{name: "pair-ok", newFn: func() Transport { return tr }}

	out := newTestSequencer(provider).SendPair(context.Background(), userMessage(), adminMessage())

	assert.True(t, out.User.Sent())
	assert.True(t, out.Admin.Sent())
	require.Len(t, tr.sent, 2)
	assert.Equal(t, KindUser, tr.sent[0].Kind, "user confirmation goes first")
	assert.Equal(t, KindAdmin, tr.sent[1].Kind)
	assert.Equal(t, int32(1), tr.closes.Load())
}

func TestSendPair_AdminSentAfterUserFailure(t *testing.T) {
	tr := newFakeTransport(func(ctx context.Context, call int, msg *Message) (string, error) {
		if msg.Kind == KindUser {
			return "", errors.New("mailbox unavailable")
		}
		return alwaysSucceed(ctx, call, msg)
	})
	provider := &fakeProvider{name: "pair-user-fails", newFn: func() Transport { return tr }}

	out := newTestSequencer(provider).SendPair(context.Background(), userMessage(), adminMessage())

	assert.False(t, out.User.Sent())
	assert.Equal(t, 2, out.User.Attempts)
	assert.True(t, out.Admin.Sent())
	assert.Equal(t, 1, out.Admin.Attempts)
	assert.Equal(t, int32(1), tr.closes.Load())
}

func TestSendPair_BothFailSessionClosedOnce(t *testing.T) {
	tr := newFakeTransport(alwaysFail)
	provider := &fakeProvider{name: "pair-both-fail", newFn: func() Transport { return tr }}

	out := newTestSequencer(provider).SendPair(context.Background(), userMessage(), adminMessage())

	assert.ErrorIs(t, out.User.Err, ErrDeliveryExhausted)
	assert.ErrorIs(t, out.Admin.Err, ErrDeliveryExhausted)
	assert.Equal(t, 4, tr.Calls())
	assert.Equal(t, int32(1), tr.closes.Load())
}

func TestSendPair_SessionPerSubmission(t *testing.T) {
	var made []*fakeTransport
	provider := &fakeProvider{name: "pair-sessions", newFn: func() Transport {
		tr := newFakeTransport(alwaysSucceed)
		made = append(made, tr)
		return tr
	}}
	seq := newTestSequencer(provider)

	seq.SendPair(context.Background(), userMessage(), adminMessage())
	seq.SendPair(context.Background(), userMessage(), adminMessage())

	assert.Equal(t, 2, provider.SessionCount())
	for _, tr := range made {
		assert.Equal(t, 2, tr.Calls())
		assert.Equal(t, int32(1), tr.closes.Load())
	}
}

func TestSendPair_Verify(t *testing.T) {
	t.Run("failure does not stop delivery", func(t *testing.T) {
		tr := verifyingTransport{newFakeTransport(alwaysSucceed)}
		tr.verifyErr = errors.New("connection refused")
		provider := &fakeProvider{name: "pair-verify-fail", newFn: func() Transport { return tr }}

		out := newTestSequencer(provider).WithVerify(true).SendPair(context.Background(), userMessage(), adminMessage())

		assert.Equal(t, int32(1), tr.verifyCalls.Load())
		assert.True(t, out.User.Sent())
		assert.True(t, out.Admin.Sent())
	})

	t.Run("skipped unless enabled", func(t *testing.T) {
		tr := verifyingTransport{newFakeTransport(alwaysSucceed)}
		provider := &fakeProvider{name: "pair-verify-off", newFn: func() Transport { return tr }}

		newTestSequencer(provider).SendPair(context.Background(), userMessage(), adminMessage())

		assert.Equal(t, int32(0), tr.verifyCalls.Load())
	})

	t.Run("sessions without verify are fine", func(t *testing.T) {
		tr := newFakeTransport(alwaysSucceed)
		provider := &fakeProvider{name: "pair-verify-unsupported", newFn: func() Transport { return tr }}

		out := newTestSequencer(provider).WithVerify(true).SendPair(context.Background(), userMessage(), adminMessage())

		assert.True(t, out.Admin.Sent())
	})
}

func TestCheckConnection(t *testing.T) {
	t.Run("verifies and closes the session", func(t *testing.T) {
		tr := verifyingTransport{newFakeTransport(alwaysSucceed)}
		provider := &fakeProvider{name: "check-ok", newFn: func() Transport { return tr }}

		require.NoError(t, CheckConnection(context.Background(), provider, time.Second))
		assert.Equal(t, int32(1), tr.verifyCalls.Load())
		assert.Equal(t, int32(1), tr.closes.Load())
	})

	t.Run("reports verify failure", func(t *testing.T) {
		tr := verifyingTransport{newFakeTransport(alwaysSucceed)}
		tr.verifyErr = errors.New("auth failed")
		provider := &fakeProvider{name: "check-fail", newFn: func() Transport { return tr }}

		assert.EqualError(t, CheckConnection(context.Background(), provider, time.Second), "auth failed")
	})

	t.Run("unsupported", func(t *testing.T) {
		provider := &fakeProvider{name: "check-none", newFn: func() Transport { return newFakeTransport(alwaysSucceed) }}

		assert.ErrorIs(t, CheckConnection(context.Background(), provider, time.Second), ErrNoConnectionCheck)
	})
}
