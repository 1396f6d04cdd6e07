package repository

import (
	"context"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// PaymentRepository stores additional-medicine payment sessions.
type PaymentRepository interface {
	CreateSession(ctx context.Context, session *model.PaymentSession) error
	GetSession(ctx context.Context, id string) (*model.PaymentSession, error)
	// OpenSession returns the latest unfinalized session of the medicine order, nil when none.
	OpenSession(ctx context.Context, medicineOrderID string) (*model.PaymentSession, error)
	Confirm(ctx context.Context, sessionID string, via model.ConfirmationSource, at time.Time) error
	// Finalize marks the header Verified, closes the session and stores the event atomically.
	Finalize(ctx context.Context, sessionID string, paidAt time.Time, event model.OutboxEvent) error
}
