package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/homecare/internal/domain/model"
)

type messageRepository struct {
	storage *Storage
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) (*model.Message, error) {
	const query = `INSERT INTO messages (id, sender_id, recipient_id, body) VALUES ($1, $2, $3, $4) RETURNING is_read, created_at`
	created := *message
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	err := r.storage.pool.QueryRow(ctx, query, created.ID, created.SenderID, created.RecipientID, created.Body).
		Scan(&created.IsRead, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE recipient_id=$1 AND NOT is_read`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *messageRepository) UnreadIDs(ctx context.Context, recipientID string) ([]string, error) {
	const query = `SELECT id FROM messages WHERE recipient_id=$1 AND NOT is_read ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// MarkRead flags the given unread messages, or all of them when ids is empty.
func (r *messageRepository) MarkRead(ctx context.Context, recipientID string, ids []string) ([]string, error) {
	const query = `UPDATE messages SET is_read=TRUE
                   WHERE recipient_id=$1 AND NOT is_read AND (cardinality($2::text[]) = 0 OR id = ANY($2))
                   RETURNING id`
	if ids == nil {
		ids = []string{}
	}
	rows, err := r.storage.pool.Query(ctx, query, recipientID, ids)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
