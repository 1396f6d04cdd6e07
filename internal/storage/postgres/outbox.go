package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// claimLease is how long a claimed event stays invisible to other relays.
const claimLease = time.Minute

type outboxRepository struct {
	storage *Storage
}

func enqueueEvent(ctx context.Context, q querier, event model.OutboxEvent) error {
	const query = `INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.Exec(ctx, query, event.ID, event.AggregateType, event.AggregateID, event.EventType,
		event.Payload, model.OutboxStatusPending, event.CreatedAt)
	return err
}

// ClaimBatch marks up to limit deliverable events as processing and returns them oldest first.
// Events whose claim expired are handed out again.
func (r *outboxRepository) ClaimBatch(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	const selectQuery = `SELECT id, aggregate_type, aggregate_id, event_type, payload, status, attempts, last_error, created_at
                         FROM outbox_events
                         WHERE status='pending' OR (status='processing' AND claimed_at < $2)
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`
	const claimQuery = `UPDATE outbox_events SET status='processing', attempts=attempts+1, claimed_at=NOW() WHERE id = ANY($1)`

	var events []model.OutboxEvent
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit, time.Now().Add(-claimLease))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e model.OutboxEvent
			if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload,
				&e.Status, &e.Attempts, &e.LastError, &e.CreatedAt); err != nil {
				return err
			}
			events = append(events, e)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if len(events) == 0 {
			return nil
		}
		ids := make([]string, len(events))
		for i := range events {
			ids[i] = events[i].ID
			events[i].Status = model.OutboxStatusProcessing
			events[i].Attempts++
		}
		_, err = tx.Exec(ctx, claimQuery, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id string) error {
	const query = `UPDATE outbox_events SET status='published', published_at=NOW(), last_error=NULL WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id)
	return err
}

// MarkFailed returns the event to the queue, or parks it for good when final is set.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string, final bool) error {
	status := model.OutboxStatusPending
	if final {
		status = model.OutboxStatusFailed
	}
	const query = `UPDATE outbox_events SET status=$1, last_error=$2 WHERE id=$3`
	_, err := r.storage.pool.Exec(ctx, query, status, reason, id)
	return err
}
