package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
	"github.com/polkiloo/homecare/internal/realtime"
)

const streamBuffer = 32

// MessageUseCase stores chat messages and feeds the unread counters.
type MessageUseCase struct {
	messages    repository.MessageRepository
	users       repository.UserRepository
	broadcaster realtime.Broadcaster
	hub         *realtime.Hub
	logger      *slog.Logger
	now         func() time.Time
}

// NewMessageUseCase constructs MessageUseCase.
func NewMessageUseCase(
	messages repository.MessageRepository,
	users repository.UserRepository,
	broadcaster realtime.Broadcaster,
	hub *realtime.Hub,
	logger *slog.Logger,
) *MessageUseCase {
	return &MessageUseCase{
		messages:    messages,
		users:       users,
		broadcaster: broadcaster,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

// Send stores an unread message and notifies the recipient.
func (u *MessageUseCase) Send(ctx context.Context, senderID, recipientID, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domainErrors.ErrEmptyMessage
	}
	if _, err := u.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	msg, err := u.messages.Create(ctx, &model.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	})
	if err != nil {
		return nil, err
	}

	u.broadcast(ctx, model.MessageEvent{
		Type:        model.MessageEventCreated,
		MessageID:   msg.ID,
		RecipientID: msg.RecipientID,
		IsRead:      msg.IsRead,
		OccurredAt:  msg.CreatedAt,
	})
	return msg, nil
}

// MarkRead flags messages of the recipient as read. Empty ids mark every unread message.
func (u *MessageUseCase) MarkRead(ctx context.Context, recipientID string, ids []string) ([]string, error) {
	changed, err := u.messages.MarkRead(ctx, recipientID, ids)
	if err != nil {
		return nil, err
	}
	at := u.now().UTC()
	for _, id := range changed {
		u.broadcast(ctx, model.MessageEvent{
			Type:        model.MessageEventRead,
			MessageID:   id,
			RecipientID: recipientID,
			IsRead:      true,
			OccurredAt:  at,
		})
	}
	return changed, nil
}

func (u *MessageUseCase) UnreadCount(ctx context.Context, userID string) (int, error) {
	return u.messages.CountUnread(ctx, userID)
}

// Subscribe opens a change feed for the user and returns it with the ids of unread messages.
// The feed is opened before the snapshot so no event between the two is lost. A message created
// in between shows up in both, so consumers fold events by message id.
// The caller owns the subscription and must close it.
func (u *MessageUseCase) Subscribe(ctx context.Context, userID string) (model.MessageFeed, []string, error) {
	sub := u.hub.Subscribe(userID, streamBuffer)
	ids, err := u.messages.UnreadIDs(ctx, userID)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}
	return sub, ids, nil
}

func (u *MessageUseCase) broadcast(ctx context.Context, event model.MessageEvent) {
	if err := u.broadcaster.Broadcast(ctx, event); err != nil {
		u.logger.Warn("message event not delivered",
			slog.String("message_id", event.MessageID),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
