// Package dispatch runs completion requests on a worker goroutine, one
// outstanding request at a time. Submitting while a request is in flight
// supersedes it: the old request's context is cancelled and its eventual
// result, if any, is dropped. Results are delivered over a channel so the
// owner applies them on its own goroutine, never from the worker.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neurocura/neurocura/pkg/completion"
)

// DefaultTimeout bounds a single completion call. Generative models can be
// slow, especially with long contexts.
const DefaultTimeout = 5 * time.Minute

// Result is the outcome of one completion request. Err, when set, has been
// classified onto the completion failure taxonomy.
type Result struct {
	RequestID    string
	TargetTurnID string
	Text         string
	Err          error
}

// Dispatcher serializes completion requests against a Completer.
type Dispatcher struct {
	completer completion.Completer
	logger    *zap.Logger
	timeout   time.Duration
	results   chan Result

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		dp.timeout = d
	}
}

func New(completer completion.Completer, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		completer: completer,
		logger:    logger,
		timeout:   DefaultTimeout,
		results:   make(chan Result, 8),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Results is the channel completed requests are delivered on. Superseded
// and cancelled requests deliver nothing.
func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

// Submit starts a completion request for the given history, cancelling any
// request still in flight. It returns the new request's id immediately; the
// outcome arrives on Results.
func (d *Dispatcher) Submit(history []completion.Message, targetTurnID string) string {
	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)

	d.mu.Lock()
	if d.cancel != nil {
		d.logger.Debug("superseding in-flight request", zap.String("request_id", d.current))
		d.cancel()
	}
	d.current = id
	d.cancel = cancel
	d.mu.Unlock()

	d.logger.Debug("dispatching completion request",
		zap.String("request_id", id),
		zap.String("target_turn", targetTurnID),
		zap.Int("context_len", len(history)),
	)

	go d.run(ctx, cancel, id, targetTurnID, history)
	return id
}

func (d *Dispatcher) run(ctx context.Context, cancel context.CancelFunc, id, targetTurnID string, history []completion.Message) {
	defer cancel()

	start := time.Now()
	text, err := d.completer.Complete(ctx, history)

	d.mu.Lock()
	live := d.current == id
	if live {
		d.current = ""
		d.cancel = nil
	}
	d.mu.Unlock()

	if !live {
		d.logger.Debug("dropping result of superseded request", zap.String("request_id", id))
		return
	}
	if errors.Is(err, context.Canceled) {
		// Cancelled requests deliver nothing.
		return
	}

	d.logger.Debug("completion request finished",
		zap.String("request_id", id),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("failed", err != nil),
	)

	d.results <- Result{
		RequestID:    id,
		TargetTurnID: targetTurnID,
		Text:         text,
		Err:          completion.Classify(err),
	}
}

// Cancel discards the outstanding request, if any. Its worker may keep
// running until the collaborator call returns, but its result is dropped.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.logger.Debug("cancelling in-flight request", zap.String("request_id", d.current))
		d.cancel()
	}
	d.current = ""
	d.cancel = nil
}
