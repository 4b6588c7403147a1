package worker

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Worker is a health worker who follows up with overdue patients over Telegram.
type Worker struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString
	FacilityID uuid.UUID
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name when the last name is known.
func (w *Worker) FullName() string {
	if w.LastName.Valid && w.LastName.String != "" {
		return w.FirstName + " " + w.LastName.String
	}
	return w.FirstName
}
