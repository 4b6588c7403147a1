package overduelist

import (
	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
)

// PendingListState controls how many pending rows the screen shows before the footer.
type PendingListState string

const (
	SeeLess PendingListState = "SEE_LESS"
	SeeAll  PendingListState = "SEE_ALL"
)

// Model is the overdue screen state. Transitions return a new Model and never touch the receiver.
type Model struct {
	Facility               *facility.Facility
	Sections               *overdue.Sections
	HasLoadedAppointments  bool
	PendingListState       PendingListState
	SectionsFeatureEnabled bool
	LoadFailure            string
}

func NewModel(sectionsFeatureEnabled bool) Model {
	return Model{
		PendingListState:       SeeLess,
		SectionsFeatureEnabled: sectionsFeatureEnabled,
	}
}

func (m Model) CurrentFacilityLoaded(f *facility.Facility) Model {
	m.Facility = f
	return m
}

func (m Model) OverdueAppointmentsLoaded(sections overdue.Sections) Model {
	m.Sections = &sections
	m.HasLoadedAppointments = true
	m.LoadFailure = ""
	return m
}

func (m Model) PendingListStateChanged(state PendingListState) Model {
	m.PendingListState = state
	return m
}

// LoadFailed keeps whatever was loaded before; a failure before the first load leaves HasLoadedAppointments false.
func (m Model) LoadFailed(reason string) Model {
	m.LoadFailure = reason
	return m
}

func (m Model) LoadRetried() Model {
	m.LoadFailure = ""
	return m
}

func (m Model) HasLoadFailure() bool {
	return m.LoadFailure != ""
}

func (m Model) OverdueCount() int {
	if m.Sections == nil {
		return 0
	}
	return m.Sections.Count()
}

func (m Model) IsOverdueSectionsListEmpty() bool {
	return m.Sections == nil || m.Sections.IsEmpty()
}
