package overdue

import (
	"time"

	"overdue_followup_bot/internal/clock"
)

// moreThanAYear is the overdue duration after which an uncalled patient leaves the pending section.
const moreThanAYear = 365

// Sections groups overdue appointments by follow-up status. Each appointment sits in exactly one slice.
type Sections struct {
	PendingToCall        []OverdueAppointment
	AgreedToVisit        []OverdueAppointment
	RemindToCallLater    []OverdueAppointment
	RemovedFromOverdue   []OverdueAppointment
	MoreThanAYearOverdue []OverdueAppointment
}

// Count is the total number of overdue appointments across all sections.
func (s Sections) Count() int {
	return len(s.PendingToCall) +
		len(s.AgreedToVisit) +
		len(s.RemindToCallLater) +
		len(s.RemovedFromOverdue) +
		len(s.MoreThanAYearOverdue)
}

func (s Sections) IsEmpty() bool {
	return s.Count() == 0
}

// GroupSections splits appointments into the five sections, keeping input order within each.
// The input is expected to be sorted most overdue first.
func GroupSections(appointments []OverdueAppointment, today time.Time) Sections {
	sections := Sections{
		PendingToCall:        []OverdueAppointment{},
		AgreedToVisit:        []OverdueAppointment{},
		RemindToCallLater:    []OverdueAppointment{},
		RemovedFromOverdue:   []OverdueAppointment{},
		MoreThanAYearOverdue: []OverdueAppointment{},
	}

	for _, a := range appointments {
		if a.CallOutcome != nil {
			switch *a.CallOutcome {
			case CallOutcomeAgreedToVisit:
				sections.AgreedToVisit = append(sections.AgreedToVisit, a)
				continue
			case CallOutcomeRemindToCallLater:
				sections.RemindToCallLater = append(sections.RemindToCallLater, a)
				continue
			case CallOutcomeRemovedFromOverdue:
				sections.RemovedFromOverdue = append(sections.RemovedFromOverdue, a)
				continue
			}
		}

		if clock.DaysBetween(a.ScheduledDate, today) > moreThanAYear {
			sections.MoreThanAYearOverdue = append(sections.MoreThanAYearOverdue, a)
		} else {
			sections.PendingToCall = append(sections.PendingToCall, a)
		}
	}
	return sections
}

// All flattens the sections back into display order.
func (s Sections) All() []OverdueAppointment {
	all := make([]OverdueAppointment, 0, s.Count())
	all = append(all, s.PendingToCall...)
	all = append(all, s.AgreedToVisit...)
	all = append(all, s.RemindToCallLater...)
	all = append(all, s.RemovedFromOverdue...)
	all = append(all, s.MoreThanAYearOverdue...)
	return all
}
