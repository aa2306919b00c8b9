package sqlite

import (
	"context"
	"fmt"

	"github.com/giglink/giglink/pkg/models"
)

func (r *SQLiteRepo) CreateMessage(ctx context.Context, m *models.Message) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("message is nil")
	}

	if m.Created <= 0 {
		m.Created = now()
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO messages (sender_id, sender_role, receiver_id, receiver_role, content, created)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SenderID, m.SenderRole, m.ReceiverID, m.ReceiverRole, m.Content, m.Created)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = id

	return id, nil
}

// ListConversation returns the most recent messages exchanged between two
// identities in either direction, oldest first.
func (r *SQLiteRepo) ListConversation(ctx context.Context, a models.Role, aID int64, b models.Role, bID int64, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, sender_id, sender_role, receiver_id, receiver_role, content, created FROM (
		   SELECT id, sender_id, sender_role, receiver_id, receiver_role, content, created
		   FROM messages
		   WHERE (sender_id = ? AND sender_role = ? AND receiver_id = ? AND receiver_role = ?)
		      OR (sender_id = ? AND sender_role = ? AND receiver_id = ? AND receiver_role = ?)
		   ORDER BY created DESC, id DESC LIMIT ?
		 ) ORDER BY created ASC, id ASC`,
		aID, a, bID, b,
		bID, b, aID, a,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderRole, &m.ReceiverID, &m.ReceiverRole, &m.Content, &m.Created); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

// DeleteMessages removes every message. Administrative bulk clear only.
func (r *SQLiteRepo) DeleteMessages(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM messages`)
	return err
}
