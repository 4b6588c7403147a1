package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"overdue_followup_bot/internal/domain/download"
)

var ErrJobNotFound = errors.New("download job not found")

const jobColumns = `id, chat_id, facility_id, format, status, attempts, last_error, sent_at, created_at, updated_at`

type PostgresDownloadRepository struct {
	db *sql.DB
}

func NewPostgresDownloadRepository(db *sql.DB) *PostgresDownloadRepository {
	return &PostgresDownloadRepository{db: db}
}

func (r *PostgresDownloadRepository) Create(ctx context.Context, job *download.Job) error {
	query := `INSERT INTO download_jobs (chat_id, facility_id, format, status, attempts)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, job.ChatID, job.FacilityID, job.Format, job.Status, job.Attempts).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating download job: %w", err)
	}
	return nil
}

func (r *PostgresDownloadRepository) Update(ctx context.Context, job *download.Job) error {
	query := `UPDATE download_jobs
               SET status = $1, attempts = $2, last_error = $3, sent_at = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, job.Status, job.Attempts, job.LastError, job.SentAt, job.ID).Scan(&job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		return fmt.Errorf("error updating download job %d: %w", job.ID, err)
	}
	return nil
}

func (r *PostgresDownloadRepository) GetByID(ctx context.Context, id int64) (*download.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM download_jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("error getting download job by ID: %w", err)
	}
	return job, nil
}

// ListPending returns the oldest pending jobs first.
func (r *PostgresDownloadRepository) ListPending(ctx context.Context, limit int) ([]*download.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM download_jobs
               WHERE status = $1
               ORDER BY created_at ASC
               LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, download.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing pending download jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*download.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning download job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending download jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(row rowScanner) (*download.Job, error) {
	job := &download.Job{}
	err := row.Scan(&job.ID, &job.ChatID, &job.FacilityID, &job.Format, &job.Status, &job.Attempts, &job.LastError, &job.SentAt, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return job, nil
}
