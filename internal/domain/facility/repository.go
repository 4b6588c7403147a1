package facility

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read access to synced facilities.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Facility, error)
	ListAll(ctx context.Context) ([]*Facility, error)
}
