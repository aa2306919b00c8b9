package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
)

const userColumns = `id, role, username, email, password_hash, wallet_address, name, bio, linkedin_url, website, skills, ai_skills, created`

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO users (role, username, email, password_hash, wallet_address, name, bio, linkedin_url, website, skills, ai_skills, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Role, u.Username, u.Email, u.PasswordHash, u.WalletAddress, u.Name, u.Bio, u.LinkedInURL, u.Website,
		marshalList(u.Skills), marshalList(u.AISkills), now())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicateUser
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, role models.Role, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? AND id = ?`, role, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, role models.Role, username string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? AND username = ?`, role, username)
	return scanUser(row)
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE users SET email = ?, wallet_address = ?, name = ?, bio = ?, linkedin_url = ?, website = ?, skills = ?, ai_skills = ? WHERE id = ?`,
		u.Email, u.WalletAddress, u.Name, u.Bio, u.LinkedInURL, u.Website,
		marshalList(u.Skills), marshalList(u.AISkills), u.ID)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateUser
	}
	return err
}

// DeleteUsers removes every user row. Administrative bulk clear only.
func (r *SQLiteRepo) DeleteUsers(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var skills, aiSkills string
	if err := row.Scan(&u.ID, &u.Role, &u.Username, &u.Email, &u.PasswordHash, &u.WalletAddress,
		&u.Name, &u.Bio, &u.LinkedInURL, &u.Website, &skills, &aiSkills, &u.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	u.Skills = unmarshalList(skills)
	u.AISkills = unmarshalList(aiSkills)

	return &u, nil
}
