package overduelist

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
)

// UIActions are the one-off navigation and dialog actions effects can trigger.
type UIActions interface {
	OpenPatientSummary(appointment overdue.OverdueAppointment)
	OpenContactOptions(appointment overdue.OverdueAppointment)
	ShowNoConnectionDialog()
	OpenFormatChooser(purpose Purpose)
	ShowDownloadScheduled(format download.Format)
	ShowSharingInProgress(format download.Format)
	ShowLegacyOverdueAppointments(appointments []overdue.OverdueAppointment, diabetesManagementEnabled bool)
	ShowError(message string)
}

// Downloads builds overdue list files for a chat.
type Downloads interface {
	ScheduleDownload(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format) error
	ShareNow(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format) error
}

// EffectHandler interprets effects for one chat session.
type EffectHandler struct {
	chatID       int64
	facilityID   uuid.UUID
	facilities   facility.Repository
	appointments overdue.Repository
	downloads    Downloads
	ui           UIActions
	today        func() time.Time
	logger       *logrus.Entry

	// loadSeq numbers appointment loads; only the latest one may report back.
	loadSeq atomic.Uint64
}

func NewEffectHandler(
	chatID int64,
	facilityID uuid.UUID,
	facilities facility.Repository,
	appointments overdue.Repository,
	downloads Downloads,
	ui UIActions,
	today func() time.Time,
	logger *logrus.Entry,
) *EffectHandler {
	return &EffectHandler{
		chatID:       chatID,
		facilityID:   facilityID,
		facilities:   facilities,
		appointments: appointments,
		downloads:    downloads,
		ui:           ui,
		today:        today,
		logger:       logger,
	}
}

func (h *EffectHandler) Handle(ctx context.Context, effect Effect, dispatch func(Event)) {
	switch e := effect.(type) {
	case LoadCurrentFacility:
		h.loadCurrentFacility(ctx, dispatch)
	case LoadOverdueAppointments:
		h.loadOverdueAppointments(ctx, e.Facility, e.Today, dispatch, func(appointments []overdue.OverdueAppointment) Event {
			return OverdueAppointmentsLoaded{Sections: overdue.GroupSections(appointments, e.Today)}
		})
	case LoadOverdueAppointmentsLegacy:
		h.loadOverdueAppointments(ctx, e.Facility, e.Today, dispatch, func(appointments []overdue.OverdueAppointment) Event {
			return OverdueAppointmentsLoadedLegacy{Appointments: appointments}
		})
	case ShowOverdueAppointments:
		h.ui.ShowLegacyOverdueAppointments(e.Appointments, e.DiabetesManagementEnabled)
	case OpenPatientSummary:
		if appointment, ok := h.findPatient(ctx, e.PatientID); ok {
			h.ui.OpenPatientSummary(appointment)
		}
	case OpenContactOptions:
		if appointment, ok := h.findPatient(ctx, e.PatientID); ok {
			h.ui.OpenContactOptions(appointment)
		}
	case ShowNoConnectionDialog:
		h.ui.ShowNoConnectionDialog()
	case OpenFormatChooser:
		h.ui.OpenFormatChooser(e.Purpose)
	case ScheduleDownload:
		h.scheduleDownload(ctx, e.Format)
	case OpenProgressDialog:
		h.share(ctx, e.Format)
	default:
		h.logger.WithField("effect", fmt.Sprintf("%T", effect)).Error("No handler for effect")
	}
}

func (h *EffectHandler) loadCurrentFacility(ctx context.Context, dispatch func(Event)) {
	f, err := h.facilities.GetByID(ctx, h.facilityID)
	if err != nil {
		h.logger.WithError(err).WithField("facility_id", h.facilityID).Error("Failed to load current facility")
		dispatch(OverdueAppointmentsLoadFailed{Reason: "Could not load your facility."})
		return
	}
	dispatch(CurrentFacilityLoaded{Facility: f})
}

func (h *EffectHandler) loadOverdueAppointments(
	ctx context.Context,
	f *facility.Facility,
	today time.Time,
	dispatch func(Event),
	loaded func([]overdue.OverdueAppointment) Event,
) {
	seq := h.loadSeq.Add(1)
	if f == nil {
		dispatch(OverdueAppointmentsLoadFailed{Reason: "Could not load your facility."})
		return
	}
	logCtx := h.logger.WithFields(logrus.Fields{"facility_id": f.ID, "load_seq": seq})

	appointments, err := h.appointments.ListOverdue(ctx, f.ID, today)
	if seq != h.loadSeq.Load() {
		logCtx.Debug("Discarding superseded overdue load")
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logCtx.WithError(err).Error("Failed to load overdue appointments")
		dispatch(OverdueAppointmentsLoadFailed{Reason: "Could not load overdue patients."})
		return
	}
	logCtx.WithField("count", len(appointments)).Info("Overdue appointments loaded")
	dispatch(loaded(appointments))
}

func (h *EffectHandler) findPatient(ctx context.Context, patientID uuid.UUID) (overdue.OverdueAppointment, bool) {
	appointment, err := h.appointments.GetLatestForPatient(ctx, h.facilityID, patientID, h.today())
	if err != nil {
		h.logger.WithError(err).WithField("patient_id", patientID).Warn("Could not open patient")
		h.ui.ShowError("This patient is no longer on the overdue list.")
		return overdue.OverdueAppointment{}, false
	}
	return *appointment, true
}

func (h *EffectHandler) scheduleDownload(ctx context.Context, format download.Format) {
	if err := h.downloads.ScheduleDownload(ctx, h.chatID, h.facilityID, format); err != nil {
		h.logger.WithError(err).WithField("format", format).Error("Failed to schedule download")
		h.ui.ShowError("Could not schedule the download. Please try again.")
		return
	}
	h.ui.ShowDownloadScheduled(format)
}

func (h *EffectHandler) share(ctx context.Context, format download.Format) {
	h.ui.ShowSharingInProgress(format)
	if err := h.downloads.ShareNow(ctx, h.chatID, h.facilityID, format); err != nil {
		h.logger.WithError(err).WithField("format", format).Error("Failed to share overdue list")
		h.ui.ShowError("Could not prepare the overdue list for sharing. Please try again.")
	}
}
