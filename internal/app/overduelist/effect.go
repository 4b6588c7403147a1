package overduelist

import (
	"time"

	"github.com/google/uuid"

	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
)

// Purpose tells the format chooser what happens after a format is picked.
type Purpose string

const (
	PurposeDownload Purpose = "download"
	PurposeShare    Purpose = "share"
)

// Effect is a request for I/O returned by Update and carried out by EffectHandler.
type Effect interface {
	overdueEffect()
}

type LoadCurrentFacility struct{}

type LoadOverdueAppointments struct {
	Today    time.Time
	Facility *facility.Facility
}

// LoadOverdueAppointmentsLegacy loads the single flat list shown when sections are off.
type LoadOverdueAppointmentsLegacy struct {
	Today    time.Time
	Facility *facility.Facility
}

type ShowOverdueAppointments struct {
	Appointments              []overdue.OverdueAppointment
	DiabetesManagementEnabled bool
}

type OpenPatientSummary struct {
	PatientID uuid.UUID
}

type OpenContactOptions struct {
	PatientID uuid.UUID
}

type ShowNoConnectionDialog struct{}

type OpenFormatChooser struct {
	Purpose Purpose
}

type ScheduleDownload struct {
	Format download.Format
}

// OpenProgressDialog builds the file for sharing while a progress message is shown.
type OpenProgressDialog struct {
	Format download.Format
}

func (LoadCurrentFacility) overdueEffect()           {}
func (LoadOverdueAppointments) overdueEffect()       {}
func (LoadOverdueAppointmentsLegacy) overdueEffect() {}
func (ShowOverdueAppointments) overdueEffect()       {}
func (OpenPatientSummary) overdueEffect()            {}
func (OpenContactOptions) overdueEffect()            {}
func (ShowNoConnectionDialog) overdueEffect()        {}
func (OpenFormatChooser) overdueEffect()             {}
func (ScheduleDownload) overdueEffect()              {}
func (OpenProgressDialog) overdueEffect()            {}
