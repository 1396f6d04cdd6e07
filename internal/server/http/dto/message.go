package dto

import "time"

// SendMessageRequest posts a chat message.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Body        string `json:"body"`
}

// MarkReadRequest lists messages to mark as read. An empty list marks all.
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// MessageResponse describes a chat message.
type MessageResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarkReadResponse lists messages that changed state.
type MarkReadResponse struct {
	IDs []string `json:"ids"`
}

// UnreadCountResponse carries the unread badge value.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
