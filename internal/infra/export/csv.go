package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"overdue_followup_bot/internal/domain/download"
)

type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Format() download.Format {
	return download.FormatCSV
}

func (e *CSVExporter) FileName(doc download.Document) string {
	return fileName(doc, "csv")
}

// Export writes one header line and one line per appointment, grouped by section.
func (e *CSVExporter) Export(w io.Writer, doc download.Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range sectionsOf(doc.Sections) {
		for _, a := range s.appointments {
			if err := cw.Write(record(s.label, a, doc.Today)); err != nil {
				return fmt.Errorf("failed to write csv row for appointment %s: %w", a.AppointmentID, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
