package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"overdue_followup_bot/internal/domain/worker"
)

// Custom errors
var ErrWorkerNotFound = errors.New("health worker not found")
var ErrDuplicateTelegramID = errors.New("health worker with this Telegram ID already exists")

const workerColumns = `id, telegram_id, first_name, last_name, facility_id, is_active, created_at, updated_at`

type PostgresWorkerRepository struct {
	db *sql.DB
}

func NewPostgresWorkerRepository(db *sql.DB) *PostgresWorkerRepository {
	return &PostgresWorkerRepository{db: db}
}

func (r *PostgresWorkerRepository) Create(ctx context.Context, w *worker.Worker) error {
	query := `INSERT INTO health_workers (telegram_id, first_name, last_name, facility_id, is_active)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, w.TelegramID, w.FirstName, w.LastName, w.FacilityID, w.IsActive).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "health_workers_telegram_id_key") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating health worker: %w", err)
	}
	return nil
}

func (r *PostgresWorkerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*worker.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM health_workers WHERE telegram_id = $1`
	w, err := scanWorker(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("error getting health worker by Telegram ID: %w", err)
	}
	return w, nil
}

func (r *PostgresWorkerRepository) Update(ctx context.Context, w *worker.Worker) error {
	query := `UPDATE health_workers
               SET first_name = $1, last_name = $2, facility_id = $3, is_active = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, w.FirstName, w.LastName, w.FacilityID, w.IsActive, w.ID).Scan(&w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWorkerNotFound
		}
		return fmt.Errorf("error updating health worker: %w", err)
	}
	return nil
}

func (r *PostgresWorkerRepository) ListActive(ctx context.Context) ([]*worker.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM health_workers WHERE is_active = TRUE ORDER BY first_name, last_name`
	return r.list(ctx, query, "active")
}

func (r *PostgresWorkerRepository) ListAll(ctx context.Context) ([]*worker.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM health_workers ORDER BY id`
	return r.list(ctx, query, "all")
}

func (r *PostgresWorkerRepository) list(ctx context.Context, query string, kind string) ([]*worker.Worker, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing %s health workers: %w", kind, err)
	}
	defer rows.Close()

	workers := make([]*worker.Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s health worker: %w", kind, err)
		}
		workers = append(workers, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s health workers: %w", kind, err)
	}
	return workers, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*worker.Worker, error) {
	w := &worker.Worker{}
	err := row.Scan(&w.ID, &w.TelegramID, &w.FirstName, &w.LastName, &w.FacilityID, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}
