package repository

import (
	"context"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// OutboxRepository hands stored domain events to the relay.
type OutboxRepository interface {
	ClaimBatch(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string, final bool) error
}
