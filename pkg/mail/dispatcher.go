// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/metrics"
)

var (
	ErrQueueFull         = errors.New("mail dispatcher queue is full")
	ErrDispatcherStopped = errors.New("mail dispatcher is stopped")
)

// Job is one submission waiting for background delivery.
type Job struct {
	ID         string
	User       *Message
	Admin      *Message
	EnqueuedAt time.Time
}

// Dispatcher delivers pairs on a fixed pool of workers so that the request
// goroutine can answer without waiting for the mail server.
type Dispatcher struct {
	sender   PairSender
	provider string
	log      *zap.SugaredLogger
	workers  int
	queue    chan *Job

	mu      sync.RWMutex
	started bool
	stopped bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher creates a stopped dispatcher. provider only labels metrics.
func NewDispatcher(sender PairSender, provider string, log *zap.SugaredLogger, workers, queueSize int) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	log = log.Named("dispatcher")
	log.Infow("Initializing mail dispatcher", "workers", workers, "queueSize", queueSize)
	return &Dispatcher{
		sender:   sender,
		provider: provider,
		log:      log,
		workers:  workers,
		queue:    make(chan *Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.log.Infow("Mail dispatcher started", "workers", d.workers)
}

// Enqueue schedules a pair without blocking and returns the job ID.
func (d *Dispatcher) Enqueue(user, admin *Message) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.MailQueueDropped.WithLabelValues(d.provider).Inc()
		return "", ErrDispatcherStopped
	}

	job := &Job{ID: uuid.NewString(), User: user, Admin: admin, EnqueuedAt: time.Now()}
	select {
	case d.queue <- job:
		metrics.MailQueued.WithLabelValues(d.provider).Inc()
		metrics.MailQueueDepth.WithLabelValues(d.provider).Set(float64(len(d.queue)))
		d.log.Debugw("Contact notifications queued", "id", job.ID, "queueLength", len(d.queue))
		return job.ID, nil
	default:
		metrics.MailQueueDropped.WithLabelValues(d.provider).Inc()
		d.log.Errorw("Mail dispatcher queue is full, rejecting job", "id", job.ID, "queueSize", cap(d.queue))
		return "", ErrQueueFull
	}
}

func (d *Dispatcher) worker(n int) {
	defer d.wg.Done()
	for job := range d.queue {
		metrics.MailQueueDepth.WithLabelValues(d.provider).Set(float64(len(d.queue)))
		d.process(n, job)
	}
}

func (d *Dispatcher) process(n int, job *Job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("panic in mail dispatcher worker recovered", "worker", n, "id", job.ID, "panic", r)
		}
	}()
	d.log.Debugw("Processing queued contact notifications",
		"worker", n,
		"id", job.ID,
		"waited", time.Since(job.EnqueuedAt).String())
	out := d.sender.SendPair(d.ctx, job.User, job.Admin)
	d.log.Infow("Queued contact notifications processed",
		"id", job.ID,
		"userSent", out.User.Sent(),
		"adminSent", out.Admin.Sent())
}

// Stop rejects new jobs and waits for queued ones, delivering them itself if
// Start never ran. When ctx ends first the in-flight deliveries are cancelled
// and ctx.Err() is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	d.log.Infow("Stopping mail dispatcher", "pending", len(d.queue))
	if !started {
		// accepted jobs are still owed a delivery
		d.wg.Add(1)
		go d.worker(0)
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.log.Info("Mail dispatcher stopped gracefully")
		return nil
	case <-ctx.Done():
		d.cancel()
		d.log.Warnw("Mail dispatcher shutdown timed out, cancelling in-flight deliveries", "pending", len(d.queue))
		return ctx.Err()
	}
}

// Length returns the number of queued jobs.
func (d *Dispatcher) Length() int {
	return len(d.queue)
}
