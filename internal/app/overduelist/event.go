package overduelist

import (
	"github.com/google/uuid"

	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
)

// NetworkStatus is the connectivity reading taken when a download or share was requested.
type NetworkStatus string

const (
	NetworkUnknown  NetworkStatus = ""
	NetworkActive   NetworkStatus = "ACTIVE"
	NetworkInactive NetworkStatus = "INACTIVE"
)

// Event is a UI interaction or a load completion fed into Update.
// The set is closed: only types in this package implement it.
type Event interface {
	overdueEvent()
}

type CurrentFacilityLoaded struct {
	Facility *facility.Facility
}

type OverdueAppointmentsLoaded struct {
	Sections overdue.Sections
}

// OverdueAppointmentsLoadedLegacy carries the flat list used when sections are switched off.
type OverdueAppointmentsLoadedLegacy struct {
	Appointments []overdue.OverdueAppointment
}

type OverdueAppointmentsLoadFailed struct {
	Reason string
}

type RetryLoadTapped struct{}

type OverdueRowTapped struct {
	PatientID uuid.UUID
}

type CallButtonTapped struct {
	PatientID uuid.UUID
}

type PendingListFooterTapped struct{}

type DownloadRequested struct {
	NetworkStatus NetworkStatus
}

type ShareRequested struct {
	NetworkStatus NetworkStatus
}

type DownloadFormatSelected struct {
	Format download.Format
}

type ShareFormatSelected struct {
	Format download.Format
}

func (CurrentFacilityLoaded) overdueEvent()           {}
func (OverdueAppointmentsLoaded) overdueEvent()       {}
func (OverdueAppointmentsLoadedLegacy) overdueEvent() {}
func (OverdueAppointmentsLoadFailed) overdueEvent()   {}
func (RetryLoadTapped) overdueEvent()                 {}
func (OverdueRowTapped) overdueEvent()                {}
func (CallButtonTapped) overdueEvent()                {}
func (PendingListFooterTapped) overdueEvent()         {}
func (DownloadRequested) overdueEvent()               {}
func (ShareRequested) overdueEvent()                  {}
func (DownloadFormatSelected) overdueEvent()          {}
func (ShareFormatSelected) overdueEvent()             {}
