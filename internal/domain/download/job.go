package download

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Format is the file format of an exported overdue list.
type Format string

const (
	FormatCSV Format = "CSV"
	FormatPDF Format = "PDF"
)

func (f Format) IsValid() bool {
	switch f {
	case FormatCSV, FormatPDF:
		return true
	default:
		return false
	}
}

// JobStatus tracks a scheduled download through the worker queue.
type JobStatus string

const (
	StatusPending JobStatus = "PENDING"
	StatusSent    JobStatus = "SENT"
	StatusFailed  JobStatus = "FAILED"
)

// Job is a download the health worker asked for; the scheduler builds and sends it later.
type Job struct {
	ID         int64
	ChatID     int64
	FacilityID uuid.UUID
	Format     Format
	Status     JobStatus
	Attempts   int
	LastError  sql.NullString
	SentAt     sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
