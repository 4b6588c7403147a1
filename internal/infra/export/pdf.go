package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"overdue_followup_bot/internal/domain/download"
)

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 6.0
)

// Column widths in millimetres on a landscape A4 page, one per column after the section.
var pdfColumnWidths = []float64{60, 24, 12, 34, 50, 28, 24, 18}

type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Format() download.Format {
	return download.FormatPDF
}

func (e *PDFExporter) FileName(doc download.Document) string {
	return fileName(doc, "pdf")
}

// Export lays out one table per non-empty section. The section column is dropped since
// each table has its own heading.
func (e *PDFExporter) Export(w io.Writer, doc download.Document) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Overdue list - %s", doc.FacilityName), true)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, tr(doc.FacilityName), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overdue patients as of %s: %d", doc.Today.Format(dateLayout), doc.Sections.Count()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, s := range sectionsOf(doc.Sections) {
		if len(s.appointments) == 0 {
			continue
		}
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s (%d)", s.label, len(s.appointments)), "", 1, "L", false, 0, "")

		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, title := range columns[1:] {
			pdf.CellFormat(pdfColumnWidths[i], pdfLineHeight, title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont(pdfFont, "", 9)
		for _, a := range s.appointments {
			for i, value := range record(s.label, a, doc.Today)[1:] {
				pdf.CellFormat(pdfColumnWidths[i], pdfLineHeight, tr(value), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
