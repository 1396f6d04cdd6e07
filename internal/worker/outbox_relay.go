package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/pkg/retry"
)

// OutboxStore exposes the subset of outbox persistence required by the relay.
type OutboxStore interface {
	ClaimBatch(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string, final bool) error
}

// EventPublisher delivers a single event downstream.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OutboxEvent) error
}

// RelayOptions tunes polling and delivery.
type RelayOptions struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	// MaxAttempts is the number of claims after which a failing event is parked as failed.
	MaxAttempts int
	Retry       retry.Config
}

// OutboxRelay polls stored events and publishes them with a pool of workers.
type OutboxRelay struct {
	store     OutboxStore
	publisher EventPublisher
	opts      RelayOptions
	logger    *slog.Logger

	jobs   chan model.OutboxEvent
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxRelay constructs the relay worker pool.
func NewOutboxRelay(store OutboxStore, publisher EventPublisher, opts RelayOptions, logger *slog.Logger) *OutboxRelay {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = logger
	}
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		jobs:      make(chan model.OutboxEvent, opts.BatchSize*opts.Workers),
	}
}

// Start launches background processing.
func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.opts.Workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OutboxRelay) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *OutboxRelay) fetchAndDispatch(ctx context.Context) {
	events, err := r.store.ClaimBatch(ctx, r.opts.BatchSize)
	if err != nil {
		r.logger.Error("claim outbox batch failed", slog.String("error", err.Error()))
		return
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- event:
		}
	}
}

func (r *OutboxRelay) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleEvent(ctx, event)
		}
	}
}

func (r *OutboxRelay) handleEvent(ctx context.Context, event model.OutboxEvent) {
	err := retry.Do(ctx, r.opts.Retry, func(ctx context.Context) error {
		return r.publisher.Publish(ctx, event)
	})
	if err == nil {
		if err := r.store.MarkPublished(ctx, event.ID); err != nil {
			r.logger.Error("mark event published failed", slog.String("event_id", event.ID), slog.String("error", err.Error()))
		}
		return
	}

	if ctx.Err() != nil {
		// lease expiry hands the event to the next poll
		return
	}

	final := event.Attempts >= r.opts.MaxAttempts
	r.logger.Warn("publish event failed",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.Int("attempts", event.Attempts),
		slog.Bool("final", final),
		slog.String("error", err.Error()))
	if err := r.store.MarkFailed(ctx, event.ID, err.Error(), final); err != nil {
		r.logger.Error("mark event failed failed", slog.String("event_id", event.ID), slog.String("error", err.Error()))
	}
}
