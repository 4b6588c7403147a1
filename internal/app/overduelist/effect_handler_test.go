package overduelist_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
)

var _ = Describe("EffectHandler", func() {
	var (
		ctx          context.Context
		f            *facility.Facility
		facilities   *fakeFacilities
		appointments *fakeAppointments
		downloads    *fakeDownloads
		screen       *recordingScreen
		events       *eventCollector
		handler      *overduelist.EffectHandler
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFacility(false)
		facilities = &fakeFacilities{facility: f}
		sections := sampleSections()
		listed := sections.All()
		for i := range listed {
			listed[i].FacilityID = f.ID
		}
		appointments = &fakeAppointments{appointments: listed}
		downloads = &fakeDownloads{}
		screen = &recordingScreen{}
		events = &eventCollector{}
		handler = overduelist.NewEffectHandler(42, f.ID, facilities, appointments, downloads, screen, todayFunc, quietLogger())
	})

	Describe("loading", func() {
		It("reports the current facility", func() {
			handler.Handle(ctx, overduelist.LoadCurrentFacility{}, events.dispatch)
			Expect(events.Events()).To(Equal([]overduelist.Event{overduelist.CurrentFacilityLoaded{Facility: f}}))
		})

		It("reports a facility that cannot be loaded as a load failure", func() {
			facilities.err = errors.New("db down")
			handler.Handle(ctx, overduelist.LoadCurrentFacility{}, events.dispatch)
			Expect(events.Events()).To(ConsistOf(BeAssignableToTypeOf(overduelist.OverdueAppointmentsLoadFailed{})))
		})

		It("groups loaded appointments into sections", func() {
			handler.Handle(ctx, overduelist.LoadOverdueAppointments{Today: today, Facility: f}, events.dispatch)

			Expect(events.Events()).To(Equal([]overduelist.Event{
				overduelist.OverdueAppointmentsLoaded{Sections: overdue.GroupSections(appointments.appointments, today)},
			}))
		})

		It("passes the flat list through in legacy mode", func() {
			handler.Handle(ctx, overduelist.LoadOverdueAppointmentsLegacy{Today: today, Facility: f}, events.dispatch)

			Expect(events.Events()).To(Equal([]overduelist.Event{
				overduelist.OverdueAppointmentsLoadedLegacy{Appointments: appointments.appointments},
			}))
		})

		It("reports a missing facility as a load failure", func() {
			handler.Handle(ctx, overduelist.LoadOverdueAppointments{Today: today}, events.dispatch)
			Expect(events.Events()).To(ConsistOf(BeAssignableToTypeOf(overduelist.OverdueAppointmentsLoadFailed{})))
		})

		It("reports repository errors as a load failure", func() {
			appointments.err = errors.New("timeout")
			handler.Handle(ctx, overduelist.LoadOverdueAppointments{Today: today, Facility: f}, events.dispatch)

			Expect(events.Events()).To(Equal([]overduelist.Event{
				overduelist.OverdueAppointmentsLoadFailed{Reason: "Could not load overdue patients."},
			}))
		})

		It("stays quiet when the session was cancelled", func() {
			appointments.err = context.Canceled
			handler.Handle(ctx, overduelist.LoadOverdueAppointments{Today: today, Facility: f}, events.dispatch)
			Expect(events.Events()).To(BeEmpty())
		})

		It("honours only the latest load", func() {
			appointments.gate = make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer close(done)
				handler.Handle(ctx, overduelist.LoadOverdueAppointments{Today: today, Facility: f}, events.dispatch)
			}()
			Eventually(func() int {
				appointments.mu.Lock()
				defer appointments.mu.Unlock()
				return appointments.calls
			}).Should(Equal(1))

			handler.Handle(ctx, overduelist.LoadOverdueAppointments{Today: today, Facility: f}, events.dispatch)
			close(appointments.gate)
			Eventually(done).Should(BeClosed())

			Expect(events.Events()).To(HaveLen(1))
		})
	})

	Describe("patient actions", func() {
		It("opens the summary for a listed patient", func() {
			patient := appointments.appointments[0]
			handler.Handle(ctx, overduelist.OpenPatientSummary{PatientID: patient.PatientID}, events.dispatch)
			Expect(screen.Calls()).To(Equal([]string{"summary:" + patient.FullName}))
		})

		It("opens contact options for a listed patient", func() {
			patient := appointments.appointments[1]
			handler.Handle(ctx, overduelist.OpenContactOptions{PatientID: patient.PatientID}, events.dispatch)
			Expect(screen.Calls()).To(Equal([]string{"contact:" + patient.FullName}))
		})

		It("shows an error for a patient no longer overdue", func() {
			handler.Handle(ctx, overduelist.OpenPatientSummary{PatientID: uuid.New()}, events.dispatch)
			Expect(screen.Calls()).To(ConsistOf(HavePrefix("error:")))
		})

		It("does not reveal patients of another facility", func() {
			elsewhere := newAppointment("Priya Sharma", today.AddDate(0, 0, -5))
			elsewhere.FacilityID = uuid.New()
			appointments.appointments = append(appointments.appointments, elsewhere)

			handler.Handle(ctx, overduelist.OpenPatientSummary{PatientID: elsewhere.PatientID}, events.dispatch)
			handler.Handle(ctx, overduelist.OpenContactOptions{PatientID: elsewhere.PatientID}, events.dispatch)

			Expect(screen.Calls()).To(HaveLen(2))
			Expect(screen.Calls()).To(HaveEach(HavePrefix("error:")))
		})
	})

	Describe("dialogs", func() {
		It("shows the no connection dialog", func() {
			handler.Handle(ctx, overduelist.ShowNoConnectionDialog{}, events.dispatch)
			Expect(screen.Calls()).To(Equal([]string{"no-connection"}))
		})

		It("opens the format chooser", func() {
			handler.Handle(ctx, overduelist.OpenFormatChooser{Purpose: overduelist.PurposeShare}, events.dispatch)
			Expect(screen.Calls()).To(Equal([]string{"chooser:share"}))
		})

		It("shows the legacy list", func() {
			handler.Handle(ctx, overduelist.ShowOverdueAppointments{Appointments: appointments.appointments, DiabetesManagementEnabled: true}, events.dispatch)
			Expect(screen.Calls()).To(Equal([]string{"legacy:3:true"}))
		})
	})

	Describe("files", func() {
		It("schedules a download and confirms it", func() {
			handler.Handle(ctx, overduelist.ScheduleDownload{Format: download.FormatPDF}, events.dispatch)

			Expect(downloads.scheduled).To(Equal([]download.Format{download.FormatPDF}))
			Expect(screen.Calls()).To(Equal([]string{"scheduled:PDF"}))
		})

		It("reports a download that could not be scheduled", func() {
			downloads.err = errors.New("db down")
			handler.Handle(ctx, overduelist.ScheduleDownload{Format: download.FormatCSV}, events.dispatch)
			Expect(screen.Calls()).To(ConsistOf(HavePrefix("error:")))
		})

		It("shows progress while sharing", func() {
			handler.Handle(ctx, overduelist.OpenProgressDialog{Format: download.FormatCSV}, events.dispatch)

			Expect(downloads.shared).To(Equal([]download.Format{download.FormatCSV}))
			Expect(screen.Calls()).To(Equal([]string{"sharing:CSV"}))
		})
	})
})
