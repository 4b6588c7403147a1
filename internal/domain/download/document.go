package download

import (
	"io"
	"time"

	"overdue_followup_bot/internal/domain/overdue"
)

// Document is everything an exporter needs to render one overdue list file.
type Document struct {
	FacilityName string
	Today        time.Time
	Sections     overdue.Sections
}

// Exporter renders a document in one file format.
type Exporter interface {
	Format() Format
	FileName(doc Document) string
	Export(w io.Writer, doc Document) error
}
