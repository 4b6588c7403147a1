package overduelist_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/domain/overdue"
)

var _ = Describe("Renderer", func() {
	var (
		screen   *recordingScreen
		renderer *overduelist.Renderer
	)

	BeforeEach(func() {
		screen = &recordingScreen{}
		renderer = overduelist.NewRenderer(screen, today)
	})

	It("shows progress until appointments are loaded", func() {
		renderer.Render(overduelist.NewModel(true))
		Expect(screen.Calls()).To(Equal([]string{"progress"}))
	})

	It("shows the built rows once loaded", func() {
		sections := sampleSections()
		renderer.Render(overduelist.NewModel(true).OverdueAppointmentsLoaded(sections))

		Expect(screen.Calls()).To(Equal([]string{"list:3:SEE_LESS"}))
		view := screen.LastView()
		Expect(view.Rows).To(Equal(overduelist.BuildRows(sections, today)))
		Expect(view.IsEmpty).To(BeFalse())
	})

	It("marks an empty list", func() {
		renderer.Render(overduelist.NewModel(true).OverdueAppointmentsLoaded(overdue.Sections{}))
		Expect(screen.LastView().IsEmpty).To(BeTrue())
	})

	It("shows the failure when nothing has loaded", func() {
		renderer.Render(overduelist.NewModel(true).LoadFailed("offline"))
		Expect(screen.Calls()).To(Equal([]string{"failure:offline"}))
	})

	It("keeps showing loaded data after a failed refresh", func() {
		m := overduelist.NewModel(true).OverdueAppointmentsLoaded(sampleSections()).LoadFailed("offline")
		renderer.Render(m)
		Expect(screen.Calls()).To(Equal([]string{"list:3:SEE_LESS"}))
	})

	It("draws nothing when sections are disabled", func() {
		renderer.Render(overduelist.NewModel(false))
		Expect(screen.Calls()).To(BeEmpty())
	})
})
