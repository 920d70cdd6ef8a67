// Package dispatch runs the in-process notification worker pool: a bounded
// FIFO queue consumed by a fixed number of workers, with bounded exponential
// retry on transient delivery failures. Delivery is at-least-once and
// best-effort; nothing here ever propagates back to the recording path.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("notification dispatcher closed")

// Options tune the pool. Zero values fall back to the defaults below.
type Options struct {
	Workers        int
	Capacity       int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Capacity <= 0 {
		o.Capacity = 256
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	return o
}

// Pool is the worker pool. It satisfies core.Dispatcher.
type Pool struct {
	sender core.NotificationSender
	opts   Options

	jobs   chan model.NotificationJob
	wg     sync.WaitGroup
	root   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewPool starts the workers and returns a pool ready to accept jobs.
func NewPool(sender core.NotificationSender, opts Options) *Pool {
	opts = opts.withDefaults()
	root, cancel := context.WithCancel(context.Background())
	p := &Pool{
		sender: sender,
		opts:   opts,
		jobs:   make(chan model.NotificationJob, opts.Capacity),
		root:   root,
		cancel: cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	log.Info().Int("workers", opts.Workers).Int("capacity", opts.Capacity).
		Msg("Notification dispatcher started")
	return p
}

// Submit enqueues a job without blocking. A full queue fails fast with a
// CapacityError; the caller's write has already succeeded and stays valid.
func (p *Pool) Submit(ctx context.Context, job model.NotificationJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return &model.CapacityError{Capacity: p.opts.Capacity}
	}
}

// Close stops intake, drains queued and in-flight jobs until ctx expires,
// then abandons whatever is left.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.deliver(job)
	}
}

// deliver sends one job, retrying transient failures with exponential
// backoff up to the attempt cap. Exhaustion and permanent failures drop the
// job with a log entry.
func (p *Pool) deliver(job model.NotificationJob) {
	operation := func() (struct{}, error) {
		err := p.sender.SendAttendanceNotification(p.root, job)
		if err == nil {
			return struct{}{}, nil
		}
		var permanent *model.PermanentDeliveryError
		if errors.As(err, &permanent) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.opts.InitialBackoff
	expo.MaxInterval = p.opts.MaxBackoff

	_, err := backoff.Retry(p.root, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(p.opts.MaxAttempts)))
	if err != nil {
		log.Warn().Err(err).
			Str("employee_id", job.EmployeeID).
			Str("date", job.Date).
			Int("max_attempts", p.opts.MaxAttempts).
			Msg("Dropping attendance notification")
	}
}
