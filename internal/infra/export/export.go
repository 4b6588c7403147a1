// Package export renders overdue lists as downloadable files.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"overdue_followup_bot/internal/clock"
	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/overdue"
)

const dateLayout = "2006-01-02"

var columns = []string{
	"Section",
	"Patient name",
	"Gender",
	"Age",
	"Phone number",
	"Village",
	"Scheduled date",
	"Days overdue",
	"High risk",
}

type section struct {
	label        string
	appointments []overdue.OverdueAppointment
}

// sectionsOf lists the sections in the same order as the on-screen list.
func sectionsOf(s overdue.Sections) []section {
	return []section{
		{"Pending to call", s.PendingToCall},
		{"Agreed to visit", s.AgreedToVisit},
		{"Remind to call later", s.RemindToCallLater},
		{"Removed from overdue list", s.RemovedFromOverdue},
		{"More than a year overdue", s.MoreThanAYearOverdue},
	}
}

func record(label string, a overdue.OverdueAppointment, today time.Time) []string {
	highRisk := "no"
	if a.IsAtHighRisk {
		highRisk = "yes"
	}
	return []string{
		label,
		a.FullName,
		string(a.Gender),
		strconv.Itoa(a.Age.EstimateAge(today)),
		optional(a.PhoneNumber),
		optional(a.VillageName),
		a.ScheduledDate.Format(dateLayout),
		strconv.Itoa(clock.DaysBetween(a.ScheduledDate, today)),
		highRisk,
	}
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// fileName builds names like "overdue-list_pipariya-phc_2024-03-05.csv".
func fileName(doc download.Document, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(doc.FacilityName))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "facility"
	}
	return fmt.Sprintf("overdue-list_%s_%s.%s", slug, doc.Today.Format(dateLayout), ext)
}
