package model

import "time"

// Message is a chat message between two users.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Body        string
	IsRead      bool
	CreatedAt   time.Time
}

// MessageEventType describes change feed events for messages.
type MessageEventType string

const (
	MessageEventCreated MessageEventType = "created"
	MessageEventRead    MessageEventType = "read"
)

// MessageEvent is pushed to subscribers when a message is created or read.
type MessageEvent struct {
	Type        MessageEventType `json:"type"`
	MessageID   string           `json:"message_id"`
	RecipientID string           `json:"recipient_id"`
	IsRead      bool             `json:"is_read"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// MessageFeed streams message events of one user until closed.
type MessageFeed interface {
	Events() <-chan MessageEvent
	Close()
}
