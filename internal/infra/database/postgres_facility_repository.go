package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"overdue_followup_bot/internal/domain/facility"
)

var ErrFacilityNotFound = errors.New("facility not found")

const facilityColumns = `id, name, diabetes_management_enabled, teleconsultation_enabled, created_at, updated_at`

type PostgresFacilityRepository struct {
	db *sql.DB
}

func NewPostgresFacilityRepository(db *sql.DB) *PostgresFacilityRepository {
	return &PostgresFacilityRepository{db: db}
}

func (r *PostgresFacilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*facility.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1 AND deleted_at IS NULL`
	f, err := scanFacility(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("error getting facility by ID: %w", err)
	}
	return f, nil
}

func (r *PostgresFacilityRepository) ListAll(ctx context.Context) ([]*facility.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE deleted_at IS NULL ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing facilities: %w", err)
	}
	defer rows.Close()

	facilities := make([]*facility.Facility, 0)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning facility: %w", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating facilities: %w", err)
	}
	return facilities, nil
}

func scanFacility(row rowScanner) (*facility.Facility, error) {
	f := &facility.Facility{}
	err := row.Scan(&f.ID, &f.Name, &f.Config.DiabetesManagementEnabled, &f.Config.TeleconsultationEnabled, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}
