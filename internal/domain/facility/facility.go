package facility

import (
	"time"

	"github.com/google/uuid"
)

// Config holds the per-facility feature switches synced from the server.
type Config struct {
	DiabetesManagementEnabled bool
	TeleconsultationEnabled   bool
}

// Facility is the clinic a health worker is assigned to.
type Facility struct {
	ID        uuid.UUID
	Name      string
	Config    Config
	CreatedAt time.Time
	UpdatedAt time.Time
}
