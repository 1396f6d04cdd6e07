package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/pkg/retry"
	testhelpers "github.com/polkiloo/homecare/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts: 2,
		Backoff:     &retry.ExponentialBackoff{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for relay")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewOutboxRelayDefaults(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxStoreStub{}, &testhelpers.PublisherStub{}, RelayOptions{}, testLogger())
	if relay.opts.BatchSize != 1 || relay.opts.Workers != 1 || relay.opts.MaxAttempts != 1 {
		t.Fatalf("unexpected defaults %+v", relay.opts)
	}
	if relay.opts.PollInterval != time.Second {
		t.Fatalf("expected default poll interval, got %v", relay.opts.PollInterval)
	}
	if relay.opts.Retry.Logger == nil {
		t.Fatal("expected retry logger to default to relay logger")
	}
}

func TestOutboxRelayPublishesEvents(t *testing.T) {
	store := &testhelpers.OutboxStoreStub{Batches: [][]model.OutboxEvent{{
		{ID: "e1", EventType: model.EventOrderCompleted, Attempts: 1},
		{ID: "e2", EventType: model.EventMedicineOrderPaid, Attempts: 1},
	}}}
	publisher := &testhelpers.PublisherStub{}
	relay := NewOutboxRelay(store, publisher, RelayOptions{PollInterval: 5 * time.Millisecond, BatchSize: 2, Workers: 2, MaxAttempts: 3, Retry: fastRetry()}, testLogger())

	relay.Start(context.Background())
	waitFor(t, func() bool { return len(store.PublishedIDs()) == 2 })
	relay.Stop()

	if got := len(publisher.Events()); got != 2 {
		t.Fatalf("expected two published events, got %d", got)
	}
	if len(store.FailedCalls()) != 0 {
		t.Fatalf("unexpected failures %+v", store.FailedCalls())
	}
}

func TestOutboxRelayMarksFailures(t *testing.T) {
	cases := []struct {
		name      string
		attempts  int
		wantFinal bool
	}{
		{name: "retry later", attempts: 1, wantFinal: false},
		{name: "attempts exhausted", attempts: 3, wantFinal: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &testhelpers.OutboxStoreStub{Batches: [][]model.OutboxEvent{{{ID: "e1", Attempts: tc.attempts}}}}
			publisher := &testhelpers.PublisherStub{Err: errors.New("broker down")}
			relay := NewOutboxRelay(store, publisher, RelayOptions{PollInterval: 5 * time.Millisecond, MaxAttempts: 3, Retry: fastRetry()}, testLogger())

			relay.Start(context.Background())
			waitFor(t, func() bool { return len(store.FailedCalls()) == 1 })
			relay.Stop()

			call := store.FailedCalls()[0]
			if call.ID != "e1" || call.Final != tc.wantFinal || call.Reason != "broker down" {
				t.Fatalf("unexpected failure call %+v", call)
			}
			if got := publisher.Calls(); got != 2 {
				t.Fatalf("expected publish to be retried twice, got %d", got)
			}
			if len(store.PublishedIDs()) != 0 {
				t.Fatal("failed event must not be marked published")
			}
		})
	}
}

func TestOutboxRelaySurvivesClaimErrors(t *testing.T) {
	calls := 0
	store := &testhelpers.OutboxStoreStub{ClaimFn: func(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("db unavailable")
		}
		if calls == 2 {
			return []model.OutboxEvent{{ID: "e1"}}, nil
		}
		return nil, nil
	}}
	relay := NewOutboxRelay(store, &testhelpers.PublisherStub{}, RelayOptions{PollInterval: 5 * time.Millisecond, Retry: fastRetry()}, testLogger())

	relay.Start(context.Background())
	waitFor(t, func() bool { return len(store.PublishedIDs()) == 1 })
	relay.Stop()
}

func TestOutboxRelayStopIsIdempotent(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxStoreStub{}, &testhelpers.PublisherStub{}, RelayOptions{PollInterval: time.Millisecond}, testLogger())
	relay.Start(context.Background())
	relay.Stop()
	relay.Stop()
}
