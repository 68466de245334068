// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/metrics"
)

const tracerName = "github.com/intrinsic-spiders/contact-relay/pkg/mail"

// RetryPolicy bounds one delivery sequence.
type RetryPolicy struct {
	// MaxAttempts below 1 is treated as 1.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt; it doubles afterwards.
	InitialDelay time.Duration
	// AttemptTimeout bounds each attempt; zero or less disables the bound.
	AttemptTimeout time.Duration
	// MaxDelay caps the backoff; zero or less leaves it uncapped.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 3 attempts, 2s initial backoff and a 15s attempt timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    config.DefaultMaxAttempts,
		InitialDelay:   config.DefaultInitialDelayMs * time.Millisecond,
		AttemptTimeout: config.DefaultAttemptTimeoutMs * time.Millisecond,
	}
}

// PolicyFromConfig maps the mail configuration onto a RetryPolicy.
func PolicyFromConfig(cfg config.Mail) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialDelay:   cfg.InitialDelay(),
		AttemptTimeout: cfg.AttemptTimeout(),
		MaxDelay:       cfg.MaxDelay(),
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	return p
}

// AttemptResult classifies a single attempt.
type AttemptResult string

const (
	AttemptSucceeded AttemptResult = "success"
	AttemptTimedOut  AttemptResult = "timeout"
	AttemptFailed    AttemptResult = "error"
)

// Attempt describes one send attempt. It exists for diagnostics only.
type Attempt struct {
	Kind      Kind
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Result    AttemptResult
	Err       error
}

// Outcome is the terminal result of a delivery sequence: sent with a message
// ID when Err is nil, failed with the last error otherwise.
type Outcome struct {
	MessageID string
	Attempts  int
	Err       error
}

func (o Outcome) Sent() bool {
	return o.Err == nil
}

func (o Outcome) String() string {
	if o.Sent() {
		return fmt.Sprintf("sent(%s) after %d attempt(s)", o.MessageID, o.Attempts)
	}
	return fmt.Sprintf("failed after %d attempt(s): %v", o.Attempts, o.Err)
}

// Deliverer runs delivery sequences for one provider.
type Deliverer struct {
	policy   RetryPolicy
	provider string
	log      *zap.SugaredLogger
	observer func(Attempt)
	sleep    func(context.Context, time.Duration) error
	tracer   trace.Tracer
}

// NewDeliverer creates a Deliverer. provider only labels logs and metrics.
func NewDeliverer(policy RetryPolicy, provider string, log *zap.SugaredLogger) *Deliverer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Deliverer{
		policy:   policy.normalized(),
		provider: provider,
		log:      log.Named("deliver"),
		sleep:    sleepContext,
		tracer:   otel.Tracer(tracerName),
	}
}

// WithObserver registers a hook called after every attempt.
func (d *Deliverer) WithObserver(fn func(Attempt)) *Deliverer {
	d.observer = fn
	return d
}

// WithSleeper replaces the backoff wait, mainly for tests.
func (d *Deliverer) WithSleeper(fn func(context.Context, time.Duration) error) *Deliverer {
	if fn != nil {
		d.sleep = fn
	}
	return d
}

func (d *Deliverer) Policy() RetryPolicy {
	return d.policy
}

// Deliver sends msg over t, retrying failed and timed-out attempts with
// exponential backoff. It never waits after the final attempt and never
// reports failure other than through the returned Outcome.
func (d *Deliverer) Deliver(ctx context.Context, t Transport, msg *Message) Outcome {
	kind := msg.Kind.label()
	log := d.log.With("kind", kind, "to", RedactAddress(msg.To), "maxAttempts", d.policy.MaxAttempts)

	ctx, span := d.tracer.Start(ctx, "mail.deliver", trace.WithAttributes(
		attribute.String("mail.provider", d.provider),
		attribute.String("mail.kind", kind),
		attribute.Int("mail.max_attempts", d.policy.MaxAttempts),
	))
	defer span.End()

	var lastErr error
	made := 0
	for attempt := 1; attempt <= d.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := BackoffDelay(d.policy.InitialDelay, attempt, d.policy.MaxDelay)
			log.Warnw("Mail send attempt failed, retrying",
				"attempt", attempt-1,
				"error", lastErr,
				"retryIn", delay.String())
			metrics.MailRetryScheduled.WithLabelValues(d.provider, kind).Inc()
			if err := d.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		made++
		started := time.Now()
		id, err := raceSend(ctx, t, msg, d.policy.AttemptTimeout)
		d.record(ctx, Attempt{
			Kind:      msg.Kind,
			Number:    attempt,
			StartedAt: started,
			Duration:  time.Since(started),
			Result:    classify(err),
			Err:       err,
		})

		if err == nil {
			log.Infow("Mail sent", "attempt", attempt, "messageID", id)
			metrics.MailSent.WithLabelValues(d.provider, kind).Inc()
			span.SetAttributes(attribute.Int("mail.attempts", attempt), attribute.String("mail.message_id", id))
			span.SetStatus(codes.Ok, "")
			return Outcome{MessageID: id, Attempts: attempt}
		}
		lastErr = err
		if cerr := ctx.Err(); cerr != nil {
			lastErr = cerr
			break
		}
	}

	exhausted := fmt.Errorf("%w after %d attempt(s): %w", ErrDeliveryExhausted, made, lastErr)
	log.Errorw("Mail delivery failed after all attempts", "attempts", made, "error", lastErr)
	metrics.MailFailed.WithLabelValues(d.provider, kind).Inc()
	span.SetAttributes(attribute.Int("mail.attempts", made))
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "delivery exhausted")
	return Outcome{Attempts: made, Err: exhausted}
}

func (d *Deliverer) record(ctx context.Context, a Attempt) {
	kind := a.Kind.label()
	metrics.MailAttempts.WithLabelValues(d.provider, kind, string(a.Result)).Inc()
	metrics.MailAttemptDuration.WithLabelValues(d.provider, kind).Observe(a.Duration.Seconds())

	attrs := []attribute.KeyValue{
		attribute.Int("attempt", a.Number),
		attribute.String("result", string(a.Result)),
		attribute.Int64("duration_ms", a.Duration.Milliseconds()),
	}
	if a.Err != nil {
		attrs = append(attrs, attribute.String("error", a.Err.Error()))
	}
	trace.SpanFromContext(ctx).AddEvent("mail.attempt", trace.WithAttributes(attrs...))

	d.log.Debugw("Mail send attempt finished",
		"kind", kind,
		"attempt", a.Number,
		"result", a.Result,
		"duration", a.Duration.String(),
		"error", a.Err)

	if d.observer != nil {
		d.observer(a)
	}
}

func classify(err error) AttemptResult {
	switch {
	case err == nil:
		return AttemptSucceeded
	case errors.Is(err, ErrAttemptTimeout):
		return AttemptTimedOut
	default:
		return AttemptFailed
	}
}
