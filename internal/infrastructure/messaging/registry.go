package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/messaging"
)

// Registry creates messaging adapters from configuration and fans events out
// to them.
type Registry struct {
	adapters    []messaging.MessageAdapter
	configs     []messaging.AdapterConfig
	retryConfig retry.Config
	deadLetters *DeadLetterStore
	queueSize   int

	mu      sync.Mutex
	queue   chan delivery
	closed  bool
	workers sync.WaitGroup
}

type delivery struct {
	ctx    context.Context
	event  *events.Event
	logger *zap.Logger
}

// DefaultQueueSize is how many events may wait for delivery before new
// ones are dropped.
const DefaultQueueSize = 64

// Option configures a Registry.
type Option func(*Registry)

// WithRetry sets how often a failed delivery is attempted and the first
// backoff delay.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(r *Registry) {
		if attempts < 1 {
			attempts = 1
		}
		r.retryConfig.MaxAttempts = attempts
		r.retryConfig.InitialDelay = initialDelay
	}
}

// WithDeadLetters records deliveries that still fail after all retries.
func WithDeadLetters(store *DeadLetterStore) Option {
	return func(r *Registry) {
		r.deadLetters = store
	}
}

// WithQueueSize bounds the asynchronous delivery queue used by Handler.
func WithQueueSize(n int) Option {
	return func(r *Registry) {
		if n < 1 {
			n = 1
		}
		r.queueSize = n
	}
}

// NewRegistry creates adapters from a MessagingConfig.
func NewRegistry(config *messaging.MessagingConfig, opts ...Option) (*Registry, error) {
	r := &Registry{
		queueSize: DefaultQueueSize,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  100 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if config == nil {
		return r, nil
	}

	for _, cfg := range config.Adapters {
		if !cfg.Enabled {
			continue
		}

		adapter, err := createAdapter(cfg)
		if err != nil {
			return nil, fmt.Errorf("create adapter %q: %w", cfg.Name, err)
		}
		r.adapters = append(r.adapters, adapter)
		r.configs = append(r.configs, cfg)
	}

	return r, nil
}

// Adapters returns all active adapters.
func (r *Registry) Adapters() []messaging.MessageAdapter {
	return r.adapters
}

// DeadLetters returns the dead letter store, or nil when none is set.
func (r *Registry) DeadLetters() *DeadLetterStore {
	return r.deadLetters
}

// Dispatch sends the event to every adapter whose filters accept its type,
// retrying each with exponential backoff. All adapters are tried; failures
// are joined and, when a store is set, recorded as dead letters.
func (r *Registry) Dispatch(ctx context.Context, event *events.Event) error {
	var errs []error
	for i, a := range r.adapters {
		cfg := r.configs[i]
		if !cfg.Accepts(event.Type) {
			continue
		}
		attempts, err := r.send(ctx, a, event)
		if err == nil {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		if r.deadLetters == nil {
			continue
		}
		dl := DeadLetter{
			Timestamp: time.Now().UTC(),
			Adapter:   cfg.Name,
			Type:      cfg.Type,
			URL:       cfg.URL,
			EventID:   event.ID,
			EventType: event.Type,
			Error:     err.Error(),
			Attempts:  attempts,
		}
		if dlErr := r.deadLetters.Append(dl); dlErr != nil {
			errs = append(errs, fmt.Errorf("record dead letter: %w", dlErr))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) send(ctx context.Context, a messaging.MessageAdapter, event *events.Event) (int, error) {
	attempts := 0
	retryer := retry.New[struct{}](r.retryConfig)
	_, err := retryer.Do(ctx, func(ctx context.Context) (struct{}, error) {
		attempts++
		return struct{}{}, a.Send(ctx, event)
	})
	return attempts, err
}

// Handler adapts Dispatch to a publisher subscription. Events are queued
// and delivered by a background worker, so the publisher never waits on an
// adapter. Failures are logged; events arriving while the queue is full or
// after Close are dropped with a warning. Call Close to drain the queue.
func (r *Registry) Handler(ctx context.Context, logger *zap.Logger) events.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e *events.Event) error {
		if !r.wants(e.Type) {
			return nil
		}
		r.enqueue(delivery{ctx: ctx, event: e, logger: logger})
		return nil
	}
}

func (r *Registry) wants(t string) bool {
	for _, cfg := range r.configs {
		if cfg.Accepts(t) {
			return true
		}
	}
	return false
}

func (r *Registry) enqueue(d delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		d.logger.Warn("messaging closed, event dropped", zap.String("event", d.event.Type))
		return
	}
	if r.queue == nil {
		r.queue = make(chan delivery, r.queueSize)
		r.workers.Add(1)
		go r.run(r.queue)
	}
	select {
	case r.queue <- d:
	default:
		d.logger.Warn("messaging queue full, event dropped", zap.String("event", d.event.Type))
	}
}

func (r *Registry) run(queue <-chan delivery) {
	defer r.workers.Done()
	for d := range queue {
		if err := r.Dispatch(d.ctx, d.event); err != nil {
			d.logger.Warn("messaging delivery failed", zap.String("event", d.event.Type), zap.Error(err))
		}
	}
}

// Close stops accepting events and waits for queued deliveries to finish.
// It is safe to call more than once.
func (r *Registry) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		if r.queue != nil {
			close(r.queue)
		}
	}
	r.mu.Unlock()
	r.workers.Wait()
}

func createAdapter(cfg messaging.AdapterConfig) (messaging.MessageAdapter, error) {
	switch cfg.Type {
	case messaging.TypeWebhook:
		return NewWebhookAdapter(cfg), nil
	case messaging.TypeSlack:
		return NewSlackAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown adapter type: %s", cfg.Type)
	}
}
