package overduelist

import (
	"errors"
	"fmt"
	"time"

	"overdue_followup_bot/internal/domain/download"
)

// ErrUnmappedEvent means an Event reached Update without a transition. It indicates a programming error.
var ErrUnmappedEvent = errors.New("overdue list: no transition defined for event")

// Next is the outcome of one Update call. A nil Model means the model is unchanged.
type Next struct {
	Model   *Model
	Effects []Effect
}

func (n Next) HasModel() bool {
	return n.Model != nil
}

func next(m Model, effects ...Effect) Next {
	return Next{Model: &m, Effects: effects}
}

func dispatch(effects ...Effect) Next {
	return Next{Effects: effects}
}

// Update is the overdue screen reducer. Its fields are fixed for the lifetime of one screen session.
type Update struct {
	Today          time.Time
	CanGeneratePdf bool
	// UnknownNetworkStatus is what an absent connectivity reading is treated as.
	UnknownNetworkStatus NetworkStatus
}

// Init runs once when a session starts.
func (u Update) Init(m Model) Next {
	if m.Facility == nil {
		return next(m, LoadCurrentFacility{})
	}
	return next(m)
}

func (u Update) Update(m Model, event Event) (Next, error) {
	switch e := event.(type) {
	case CurrentFacilityLoaded:
		updated := m.CurrentFacilityLoaded(e.Facility)
		return next(updated, u.loadAppointments(updated)), nil
	case OverdueAppointmentsLoaded:
		return next(m.OverdueAppointmentsLoaded(e.Sections)), nil
	case OverdueAppointmentsLoadedLegacy:
		diabetesManagementEnabled := m.Facility != nil && m.Facility.Config.DiabetesManagementEnabled
		return dispatch(ShowOverdueAppointments{
			Appointments:              e.Appointments,
			DiabetesManagementEnabled: diabetesManagementEnabled,
		}), nil
	case OverdueAppointmentsLoadFailed:
		return next(m.LoadFailed(e.Reason)), nil
	case RetryLoadTapped:
		retried := m.LoadRetried()
		if retried.Facility == nil {
			return next(retried, LoadCurrentFacility{}), nil
		}
		return next(retried, u.loadAppointments(retried)), nil
	case OverdueRowTapped:
		return dispatch(OpenPatientSummary{PatientID: e.PatientID}), nil
	case CallButtonTapped:
		return dispatch(OpenContactOptions{PatientID: e.PatientID}), nil
	case PendingListFooterTapped:
		return next(m.PendingListStateChanged(togglePendingListState(m.PendingListState))), nil
	case DownloadRequested:
		return u.downloadRequested(e.NetworkStatus), nil
	case ShareRequested:
		return u.shareRequested(e.NetworkStatus), nil
	case DownloadFormatSelected:
		return dispatch(ScheduleDownload{Format: u.supportedFormat(e.Format)}), nil
	case ShareFormatSelected:
		return dispatch(OpenProgressDialog{Format: u.supportedFormat(e.Format)}), nil
	default:
		return Next{}, fmt.Errorf("%w: %T", ErrUnmappedEvent, event)
	}
}

func (u Update) loadAppointments(m Model) Effect {
	if m.SectionsFeatureEnabled {
		return LoadOverdueAppointments{Today: u.Today, Facility: m.Facility}
	}
	return LoadOverdueAppointmentsLegacy{Today: u.Today, Facility: m.Facility}
}

func togglePendingListState(state PendingListState) PendingListState {
	if state == SeeAll {
		return SeeLess
	}
	return SeeAll
}

func (u Update) isConnected(status NetworkStatus) bool {
	if status == NetworkUnknown {
		status = u.UnknownNetworkStatus
	}
	return status == NetworkActive
}

func (u Update) downloadRequested(status NetworkStatus) Next {
	switch {
	case !u.isConnected(status):
		return dispatch(ShowNoConnectionDialog{})
	case u.CanGeneratePdf:
		return dispatch(OpenFormatChooser{Purpose: PurposeDownload})
	default:
		return dispatch(ScheduleDownload{Format: download.FormatCSV})
	}
}

func (u Update) shareRequested(status NetworkStatus) Next {
	switch {
	case !u.isConnected(status):
		return dispatch(ShowNoConnectionDialog{})
	case u.CanGeneratePdf:
		return dispatch(OpenFormatChooser{Purpose: PurposeShare})
	default:
		return dispatch(OpenProgressDialog{Format: download.FormatCSV})
	}
}

// supportedFormat falls back to CSV for anything this session cannot produce.
func (u Update) supportedFormat(format download.Format) download.Format {
	if format == download.FormatPDF && u.CanGeneratePdf {
		return download.FormatPDF
	}
	return download.FormatCSV
}
