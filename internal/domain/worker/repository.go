package worker

import (
	"context"
)

// Repository defines the operations for persisting and retrieving health workers.
type Repository interface {
	Create(ctx context.Context, w *Worker) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*Worker, error)
	Update(ctx context.Context, w *Worker) error // first name, last name, facility, active flag
	ListActive(ctx context.Context) ([]*Worker, error)
	ListAll(ctx context.Context) ([]*Worker, error)
}
