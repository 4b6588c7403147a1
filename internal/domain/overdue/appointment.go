package overdue

import (
	"time"

	"github.com/google/uuid"

	"overdue_followup_bot/internal/clock"
)

type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderTransgender Gender = "transgender"
	GenderUnknown     Gender = "unknown"
)

// CallOutcome is the result a health worker recorded after calling the patient.
type CallOutcome string

const (
	CallOutcomeAgreedToVisit      CallOutcome = "agreed_to_visit"
	CallOutcomeRemindToCallLater  CallOutcome = "remind_to_call_later"
	CallOutcomeRemovedFromOverdue CallOutcome = "removed_from_overdue_list"
)

// AgeDetails holds either a date of birth or an age recorded at some date.
type AgeDetails struct {
	DateOfBirth   *time.Time
	RecordedAge   *int
	AgeRecordedAt *time.Time
}

// EstimateAge returns the age in whole years as of today.
// A recorded age is aged by the years elapsed since it was entered.
func (a AgeDetails) EstimateAge(today time.Time) int {
	switch {
	case a.DateOfBirth != nil:
		return yearsBetween(*a.DateOfBirth, today)
	case a.RecordedAge != nil && a.AgeRecordedAt != nil:
		return *a.RecordedAge + yearsBetween(*a.AgeRecordedAt, today)
	case a.RecordedAge != nil:
		return *a.RecordedAge
	default:
		return 0
	}
}

func yearsBetween(from, to time.Time) int {
	from, to = clock.Date(from), clock.Date(to)
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// OverdueAppointment is one patient's missed follow-up visit. It is read-only once loaded.
type OverdueAppointment struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	FacilityID    uuid.UUID
	FullName      string
	Gender        Gender
	Age           AgeDetails
	PhoneNumber   *string
	VillageName   *string
	ScheduledDate time.Time
	IsAtHighRisk  bool
	CallOutcome   *CallOutcome
}
