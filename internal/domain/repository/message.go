package repository

import (
	"context"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) (*model.Message, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	UnreadIDs(ctx context.Context, recipientID string) ([]string, error)
	// MarkRead flags unread messages of the recipient and returns the ids that changed.
	MarkRead(ctx context.Context, recipientID string, ids []string) ([]string, error)
}
