package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
)

const requestColumns = `id, sender_id, sender_role, receiver_id, receiver_role, status, created, updated`

func (r *SQLiteRepo) CreateRequest(ctx context.Context, cr *models.ConnectionRequest) (int64, error) {
	if cr == nil {
		return 0, fmt.Errorf("connection request is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO connection_requests (sender_id, sender_role, receiver_id, receiver_role, status, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cr.SenderID, cr.SenderRole, cr.ReceiverID, cr.ReceiverRole, models.ConnectionPending, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicateRequest
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetRequestByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+requestColumns+` FROM connection_requests WHERE id = ?`, id)
	var cr models.ConnectionRequest
	if err := row.Scan(&cr.ID, &cr.SenderID, &cr.SenderRole, &cr.ReceiverID, &cr.ReceiverRole,
		&cr.Status, &cr.Created, &cr.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &cr, nil
}

func (r *SQLiteRepo) UpdateRequestStatus(ctx context.Context, id int64, status models.ConnectionStatus) error {
	_, err := r.conn.Exec(ctx, `UPDATE connection_requests SET status = ?, updated = ? WHERE id = ?`, status, now(), id)
	return err
}

// ListIncoming returns pending requests addressed to the identity with the
// sender's public profile resolved.
func (r *SQLiteRepo) ListIncoming(ctx context.Context, role models.Role, receiverID int64) ([]models.ConnectionRequest, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+aliasColumns("cr", requestColumns)+`, `+aliasColumns("u", userColumns)+`
		 FROM connection_requests cr
		 JOIN users u ON u.id = cr.sender_id AND u.role = cr.sender_role
		 WHERE cr.receiver_id = ? AND cr.receiver_role = ? AND cr.status = ?
		 ORDER BY cr.created DESC`,
		receiverID, role, models.ConnectionPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConnectionRequest
	for rows.Next() {
		var cr models.ConnectionRequest
		var u models.User
		var skills, aiSkills string
		if err := rows.Scan(&cr.ID, &cr.SenderID, &cr.SenderRole, &cr.ReceiverID, &cr.ReceiverRole,
			&cr.Status, &cr.Created, &cr.Updated,
			&u.ID, &u.Role, &u.Username, &u.Email, &u.PasswordHash, &u.WalletAddress,
			&u.Name, &u.Bio, &u.LinkedInURL, &u.Website, &skills, &aiSkills, &u.Created); err != nil {
			return nil, err
		}
		u.PasswordHash = ""
		u.Skills = unmarshalList(skills)
		u.AISkills = unmarshalList(aiSkills)
		cr.Sender = &u
		out = append(out, cr)
	}

	return out, rows.Err()
}

// DeleteRequests removes every connection request. Administrative bulk clear only.
func (r *SQLiteRepo) DeleteRequests(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM connection_requests`)
	return err
}
