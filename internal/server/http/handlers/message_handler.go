package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/realtime"
	"github.com/polkiloo/homecare/internal/server/http/dto"
)

const (
	unreadEvent       = "unread"
	heartbeatInterval = 25 * time.Second
)

// MessageHandler serves chat messages and the unread badge.
type MessageHandler struct {
	facade    MessageFacade
	heartbeat time.Duration
}

func NewMessageHandler(facade MessageFacade) *MessageHandler {
	return &MessageHandler{facade: facade, heartbeat: heartbeatInterval}
}

// Send handles POST /api/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "recipient_id is required")
		return
	}

	msg, err := h.facade.SendMessage(c.Request.Context(), CurrentUserID(c), req.RecipientID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResponse{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
		IsRead:      msg.IsRead,
		CreatedAt:   msg.CreatedAt,
	})
}

// MarkRead handles POST /api/messages/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req dto.MarkReadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "ids must be a list")
			return
		}
	}

	changed, err := h.facade.MarkMessagesRead(c.Request.Context(), CurrentUserID(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	c.JSON(http.StatusOK, dto.MarkReadResponse{IDs: changed})
}

// Unread handles GET /api/messages/unread.
func (h *MessageHandler) Unread(c *gin.Context) {
	count, err := h.facade.UnreadCount(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// Stream handles GET /api/messages/unread/stream.
// It pushes the current count first and then every change as a server-sent event.
func (h *MessageHandler) Stream(c *gin.Context) {
	userID := CurrentUserID(c)
	ctx := c.Request.Context()

	feed, unread, err := h.facade.SubscribeUnread(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer feed.Close()

	counter := realtime.NewUnreadCounter(userID, unread)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(unreadEvent, dto.UnreadCountResponse{Count: counter.Count()})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	events := feed.Events()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", counter.Count())
			return true
		case event, ok := <-events:
			if !ok {
				return false
			}
			if counter.Apply(event) {
				c.SSEvent(unreadEvent, dto.UnreadCountResponse{Count: counter.Count()})
			}
			return true
		}
	})
}

var _ model.MessageFeed = (*realtime.Subscription)(nil)
