package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
)

const jobColumns = `id, producer_id, title, description, requirements, skills_required, employment_type, location, salary, type, payment_status, transaction_hash, network, tags, posted`

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	posted := j.Posted
	if posted <= 0 {
		posted = now()
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO jobs (producer_id, title, description, requirements, skills_required, employment_type, location, salary, type, payment_status, transaction_hash, network, tags, posted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ProducerID, j.Title, j.Description, marshalList(j.Requirements), marshalList(j.SkillsRequired),
		j.EmploymentType, j.Location, j.Salary, j.Type, j.PaymentStatus, j.TransactionHash, j.Network,
		marshalList(j.Tags), posted)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (r *SQLiteRepo) ListJobs(ctx context.Context, limit, offset int) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY posted DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func (r *SQLiteRepo) ListJobsByProducer(ctx context.Context, producerID int64) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs WHERE producer_id = ? ORDER BY posted DESC`, producerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

// MarkPaid flips the job to paid exactly once. Re-recording the same hash is
// a no-op; a different hash on an already-paid job is a conflict.
func (r *SQLiteRepo) MarkPaid(ctx context.Context, jobID int64, txHash, network string) error {
	res, err := r.conn.Exec(ctx,
		`UPDATE jobs SET payment_status = ?, transaction_hash = ?, network = ? WHERE id = ? AND payment_status = ?`,
		models.PaymentPaid, txHash, network, jobID, models.PaymentUnpaid)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// nothing updated: either the job is gone or it is already paid
	var existing string
	row := r.conn.QueryRow(ctx, `SELECT transaction_hash FROM jobs WHERE id = ?`, jobID)
	if err := row.Scan(&existing); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("job %d not found", jobID)
		}
		return err
	}
	if existing != txHash {
		return repository.ErrPaymentConflict
	}

	return nil
}

// ApplyToJob records an application; the UNIQUE (job_id, freelancer_id) pair
// makes a repeat apply collapse into the existing row.
func (r *SQLiteRepo) ApplyToJob(ctx context.Context, jobID, freelancerID int64) error {
	_, err := r.conn.Exec(ctx,
		`INSERT OR IGNORE INTO applications (job_id, freelancer_id, created) VALUES (?, ?, ?)`,
		jobID, freelancerID, now())
	return err
}

func (r *SQLiteRepo) ListApplicants(ctx context.Context, jobID int64) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+aliasColumns("u", userColumns)+`
		 FROM users u JOIN applications a ON a.freelancer_id = u.id
		 WHERE a.job_id = ? ORDER BY a.created`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListAppliedJobs(ctx context.Context, freelancerID int64) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+aliasColumns("j", jobColumns)+`
		 FROM jobs j JOIN applications a ON a.job_id = j.id
		 WHERE a.freelancer_id = ? ORDER BY a.created DESC`, freelancerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

// DeleteJobs removes every job and application row. Administrative bulk clear only.
func (r *SQLiteRepo) DeleteJobs(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM applications`); err != nil {
		return err
	}
	_, err := r.conn.Exec(ctx, `DELETE FROM jobs`)
	return err
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	var requirements, skillsRequired, tags string
	if err := row.Scan(&j.ID, &j.ProducerID, &j.Title, &j.Description, &requirements, &skillsRequired,
		&j.EmploymentType, &j.Location, &j.Salary, &j.Type, &j.PaymentStatus, &j.TransactionHash,
		&j.Network, &tags, &j.Posted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	j.Requirements = unmarshalList(requirements)
	j.SkillsRequired = unmarshalList(skillsRequired)
	j.Tags = unmarshalList(tags)

	return &j, nil
}

func collectJobs(rows *sql.Rows) ([]models.Job, error) {
	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}
