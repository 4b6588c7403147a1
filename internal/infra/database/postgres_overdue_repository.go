package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"overdue_followup_bot/internal/domain/overdue"
)

var ErrAppointmentNotFound = errors.New("overdue appointment not found")

// overdueStatuses are the appointment statuses that still count as missed.
var overdueStatuses = []string{"scheduled"}

// The latest phone number and the latest call result are picked per appointment.
const overdueSelect = `SELECT a.id, a.patient_id, a.facility_id, p.full_name, p.gender,
       p.date_of_birth, p.age_value, p.age_updated_at,
       ph.number, p.village_name, a.scheduled_date, p.is_at_high_risk, cr.outcome
  FROM appointments a
  JOIN patients p ON p.id = a.patient_id AND p.deleted_at IS NULL
  LEFT JOIN LATERAL (
       SELECT number FROM patient_phone_numbers
        WHERE patient_id = p.id AND deleted_at IS NULL
        ORDER BY updated_at DESC LIMIT 1
  ) ph ON TRUE
  LEFT JOIN LATERAL (
       SELECT outcome FROM call_results
        WHERE appointment_id = a.id AND deleted_at IS NULL
        ORDER BY updated_at DESC LIMIT 1
  ) cr ON TRUE`

type PostgresOverdueRepository struct {
	db *sql.DB
}

func NewPostgresOverdueRepository(db *sql.DB) *PostgresOverdueRepository {
	return &PostgresOverdueRepository{db: db}
}

func (r *PostgresOverdueRepository) ListOverdue(ctx context.Context, facilityID uuid.UUID, today time.Time) ([]overdue.OverdueAppointment, error) {
	query := overdueSelect + `
 WHERE a.facility_id = $1 AND a.status = ANY($2) AND a.scheduled_date < $3 AND a.deleted_at IS NULL
 ORDER BY a.scheduled_date ASC, p.full_name ASC`

	rows, err := r.db.QueryContext(ctx, query, facilityID, pq.Array(overdueStatuses), today)
	if err != nil {
		return nil, fmt.Errorf("error listing overdue appointments for facility %s: %w", facilityID, err)
	}
	defer rows.Close()

	appointments := make([]overdue.OverdueAppointment, 0)
	for rows.Next() {
		appt, err := scanOverdueAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning overdue appointment: %w", err)
		}
		appointments = append(appointments, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue appointments: %w", err)
	}
	return appointments, nil
}

func (r *PostgresOverdueRepository) GetLatestForPatient(ctx context.Context, facilityID, patientID uuid.UUID, today time.Time) (*overdue.OverdueAppointment, error) {
	query := overdueSelect + `
 WHERE a.patient_id = $1 AND a.status = ANY($2) AND a.scheduled_date < $3 AND a.facility_id = $4 AND a.deleted_at IS NULL
 ORDER BY a.scheduled_date DESC
 LIMIT 1`

	appt, err := scanOverdueAppointment(r.db.QueryRowContext(ctx, query, patientID, pq.Array(overdueStatuses), today, facilityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("error getting overdue appointment for patient %s: %w", patientID, err)
	}
	return appt, nil
}

func scanOverdueAppointment(row rowScanner) (*overdue.OverdueAppointment, error) {
	var (
		appt         overdue.OverdueAppointment
		gender       string
		dateOfBirth  sql.NullTime
		ageValue     sql.NullInt32
		ageUpdatedAt sql.NullTime
		phone        sql.NullString
		village      sql.NullString
		outcome      sql.NullString
	)

	err := row.Scan(
		&appt.AppointmentID, &appt.PatientID, &appt.FacilityID, &appt.FullName, &gender,
		&dateOfBirth, &ageValue, &ageUpdatedAt,
		&phone, &village, &appt.ScheduledDate, &appt.IsAtHighRisk, &outcome,
	)
	if err != nil {
		return nil, err
	}

	appt.Gender = overdue.Gender(gender)
	if dateOfBirth.Valid {
		appt.Age.DateOfBirth = &dateOfBirth.Time
	}
	if ageValue.Valid {
		age := int(ageValue.Int32)
		appt.Age.RecordedAge = &age
	}
	if ageUpdatedAt.Valid {
		appt.Age.AgeRecordedAt = &ageUpdatedAt.Time
	}
	if phone.Valid {
		appt.PhoneNumber = &phone.String
	}
	if village.Valid {
		appt.VillageName = &village.String
	}
	if outcome.Valid {
		o := overdue.CallOutcome(outcome.String)
		appt.CallOutcome = &o
	}
	return &appt, nil
}
