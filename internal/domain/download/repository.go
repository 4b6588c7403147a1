package download

import (
	"context"
)

// Repository persists scheduled download jobs.
type Repository interface {
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	ListPending(ctx context.Context, limit int) ([]*Job, error)
}
