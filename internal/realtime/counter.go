package realtime

import "github.com/polkiloo/homecare/internal/domain/model"

// UnreadCounter folds message events into the unread messages of one user.
// It tracks message ids so an event for a message already in the snapshot is not counted twice.
type UnreadCounter struct {
	userID string
	unread map[string]struct{}
}

// NewUnreadCounter starts from the ids that were unread when the feed was opened.
func NewUnreadCounter(userID string, unreadIDs []string) *UnreadCounter {
	c := &UnreadCounter{userID: userID, unread: make(map[string]struct{}, len(unreadIDs))}
	for _, id := range unreadIDs {
		c.unread[id] = struct{}{}
	}
	return c
}

// Apply reports whether the event changed the count.
func (c *UnreadCounter) Apply(event model.MessageEvent) bool {
	if event.RecipientID != c.userID || event.MessageID == "" {
		return false
	}
	_, known := c.unread[event.MessageID]
	switch event.Type {
	case model.MessageEventCreated:
		if event.IsRead || known {
			return false
		}
		c.unread[event.MessageID] = struct{}{}
		return true
	case model.MessageEventRead:
		if !known {
			return false
		}
		delete(c.unread, event.MessageID)
		return true
	}
	return false
}

func (c *UnreadCounter) Count() int {
	return len(c.unread)
}
