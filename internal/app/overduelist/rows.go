package overduelist

import (
	"time"

	"github.com/google/uuid"

	"overdue_followup_bot/internal/clock"
	"overdue_followup_bot/internal/domain/overdue"
)

// SectionTitle keys a section header; the screen maps it to display text.
type SectionTitle string

const (
	TitlePendingToCall        SectionTitle = "pending-to-call"
	TitleAgreedToVisit        SectionTitle = "agreed-to-visit"
	TitleRemindToCallLater    SectionTitle = "remind-later"
	TitleRemovedFromOverdue   SectionTitle = "removed-from-list"
	TitleMoreThanAYearOverdue SectionTitle = "more-than-a-year-overdue"
)

// ListRow is one line of the overdue list. Only the row types below implement it.
type ListRow interface {
	overdueListRow()
}

type SectionHeader struct {
	Title SectionTitle
	Count int
}

// AppointmentRow is a display projection of an overdue appointment.
// A nil PhoneNumber means no call action; a nil VillageName means no location label.
type AppointmentRow struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	Name          string
	Gender        overdue.Gender
	Age           int
	PhoneNumber   *string
	OverdueDays   int
	IsAtHighRisk  bool
	VillageName   *string
}

type PendingListFooter struct{}

type EmptyPendingPlaceholder struct{}

type Divider struct{}

func (SectionHeader) overdueListRow()           {}
func (AppointmentRow) overdueListRow()          {}
func (PendingListFooter) overdueListRow()       {}
func (EmptyPendingPlaceholder) overdueListRow() {}
func (Divider) overdueListRow()                 {}

// BuildRows flattens the sections into the fixed screen order.
func BuildRows(sections overdue.Sections, today time.Time) []ListRow {
	rows := make([]ListRow, 0, sections.Count()+11)

	rows = append(rows, SectionHeader{Title: TitlePendingToCall, Count: len(sections.PendingToCall)})
	if len(sections.PendingToCall) == 0 {
		rows = append(rows, EmptyPendingPlaceholder{})
	}
	rows = appendAppointmentRows(rows, sections.PendingToCall, today)
	rows = append(rows, PendingListFooter{}, Divider{})

	rows = append(rows, SectionHeader{Title: TitleAgreedToVisit, Count: len(sections.AgreedToVisit)})
	rows = appendAppointmentRows(rows, sections.AgreedToVisit, today)
	rows = append(rows, Divider{})

	rows = append(rows, SectionHeader{Title: TitleRemindToCallLater, Count: len(sections.RemindToCallLater)})
	rows = appendAppointmentRows(rows, sections.RemindToCallLater, today)
	rows = append(rows, Divider{})

	rows = append(rows, SectionHeader{Title: TitleRemovedFromOverdue, Count: len(sections.RemovedFromOverdue)})
	rows = appendAppointmentRows(rows, sections.RemovedFromOverdue, today)
	rows = append(rows, Divider{})

	rows = append(rows, SectionHeader{Title: TitleMoreThanAYearOverdue, Count: len(sections.MoreThanAYearOverdue)})
	return appendAppointmentRows(rows, sections.MoreThanAYearOverdue, today)
}

func appendAppointmentRows(rows []ListRow, appointments []overdue.OverdueAppointment, today time.Time) []ListRow {
	for _, a := range appointments {
		rows = append(rows, NewAppointmentRow(a, today))
	}
	return rows
}

func NewAppointmentRow(a overdue.OverdueAppointment, today time.Time) AppointmentRow {
	return AppointmentRow{
		AppointmentID: a.AppointmentID,
		PatientID:     a.PatientID,
		Name:          a.FullName,
		Gender:        a.Gender,
		Age:           a.Age.EstimateAge(today),
		PhoneNumber:   a.PhoneNumber,
		OverdueDays:   clock.DaysBetween(a.ScheduledDate, today),
		IsAtHighRisk:  a.IsAtHighRisk,
		VillageName:   a.VillageName,
	}
}

// SameItem reports whether two rows stand for the same list entry, ignoring content changes.
func SameItem(a, b ListRow) bool {
	switch x := a.(type) {
	case AppointmentRow:
		y, ok := b.(AppointmentRow)
		return ok && x.PatientID == y.PatientID
	case SectionHeader:
		y, ok := b.(SectionHeader)
		return ok && x.Title == y.Title
	default:
		return false
	}
}

// SameContents reports whether two rows would render identically.
func SameContents(a, b ListRow) bool {
	x, ok := a.(AppointmentRow)
	if !ok {
		return a == b
	}
	y, ok := b.(AppointmentRow)
	if !ok {
		return false
	}
	return x.AppointmentID == y.AppointmentID &&
		x.PatientID == y.PatientID &&
		x.Name == y.Name &&
		x.Gender == y.Gender &&
		x.Age == y.Age &&
		equalOptional(x.PhoneNumber, y.PhoneNumber) &&
		x.OverdueDays == y.OverdueDays &&
		x.IsAtHighRisk == y.IsAtHighRisk &&
		equalOptional(x.VillageName, y.VillageName)
}

// SameRows reports whether two row lists would render identically.
func SameRows(a, b []ListRow) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameContents(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
