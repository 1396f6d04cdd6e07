package repository

import (
	"context"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// OrderRepository describes persistence operations with service orders.
// Every mutation is conditional on the order still being ongoing.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByParticipant(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	SetRate(ctx context.Context, orderID string, rate float64) error
	Cancel(ctx context.Context, orderID string) error
	// Complete moves the order to Completed and stores the event in the same transaction.
	Complete(ctx context.Context, orderID, proofOfService string, completedAt time.Time, event model.OutboxEvent) error
}
