// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// sendFunc scripts the behavior of one call to fakeTransport.Send; call
// numbers start at 1.
type sendFunc func(ctx context.Context, call int, msg *Message) (string, error)

type fakeTransport struct {
	mu     sync.Mutex
	script sendFunc
	calls  int
	sent   []*Message
	closes atomic.Int32

	verifyErr   error
	verifyCalls atomic.Int32
}

func newFakeTransport(script sendFunc) *fakeTransport {
	return &fakeTransport{script: script}
}

func (f *fakeTransport) Send(ctx context.Context, msg *Message) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	id, err := f.script(ctx, call, msg)
	if err == nil {
		f.mu.Lock()
		f.sent = append(f.sent, msg)
		f.mu.Unlock()
	}
	return id, err
}

func (f *fakeTransport) Close() error {
	f.closes.Add(1)
	return nil
}

func (f *fakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type verifyingTransport struct {
	*fakeTransport
}

func (v verifyingTransport) Verify(ctx context.Context) error {
	v.verifyCalls.Add(1)
	return v.verifyErr
}

type fakeProvider struct {
	name     string
	sessions []Transport
	newFn    func() Transport
	mu       sync.Mutex
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) NewSession() Transport {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.newFn()
	p.sessions = append(p.sessions, t)
	return t
}

func (p *fakeProvider) SessionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func alwaysSucceed(_ context.Context, call int, _ *Message) (string, error) {
	return fmt.Sprintf("<id-%d@example.com>", call), nil
}

func alwaysFail(_ context.Context, call int, _ *Message) (string, error) {
	return "", fmt.Errorf("smtp 451 on call %d", call)
}

// failFirst fails the first n calls and succeeds afterwards.
func failFirst(n int) sendFunc {
	return func(ctx context.Context, call int, msg *Message) (string, error) {
		if call <= n {
			return alwaysFail(ctx, call, msg)
		}
		return alwaysSucceed(ctx, call, msg)
	}
}

// blockUntilCancelled never answers on its own.
func blockUntilCancelled(ctx context.Context, _ int, _ *Message) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// recordingSleeper captures backoff waits without sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleeper) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func userMessage() *Message {
	return &Message{
		Kind:     KindUser,
		From:     "sender@example.com",
		FromName: "Intrinsic Spiders",
		To:       "ana@example.com",
		ReplyTo:  "admin@example.com",
		Subject:  "Thank You for Contacting Intrinsic Spiders",
		Body:     "<p>Hi Ana</p>",
	}
}

func adminMessage() *Message {
	return &Message{
		Kind:     KindAdmin,
		From:     "sender@example.com",
		FromName: "Website Contact Form",
		To:       "admin@example.com",
		ReplyTo:  "ana@example.com",
		Subject:  "New Contact Form Submission from Ana",
		Body:     "<p>Ana wrote</p>",
	}
}
