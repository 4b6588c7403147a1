package overdue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository loads overdue appointments from the synced local store.
type Repository interface {
	// ListOverdue returns the facility's appointments scheduled before today that were never visited,
	// most overdue first.
	ListOverdue(ctx context.Context, facilityID uuid.UUID, today time.Time) ([]OverdueAppointment, error)
	// GetLatestForPatient returns the patient's most recent overdue appointment at the facility.
	GetLatestForPatient(ctx context.Context, facilityID, patientID uuid.UUID, today time.Time) (*OverdueAppointment, error)
}
