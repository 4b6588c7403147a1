package overduelist_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/domain/overdue"
)

func countRows[T overduelist.ListRow](rows []overduelist.ListRow) int {
	n := 0
	for _, r := range rows {
		if _, ok := r.(T); ok {
			n++
		}
	}
	return n
}

var _ = Describe("BuildRows", func() {
	It("lays the sections out in the fixed order", func() {
		sections := sampleSections()
		rows := overduelist.BuildRows(sections, today)

		Expect(rows).To(Equal([]overduelist.ListRow{
			overduelist.SectionHeader{Title: overduelist.TitlePendingToCall, Count: 1},
			overduelist.NewAppointmentRow(sections.PendingToCall[0], today),
			overduelist.PendingListFooter{},
			overduelist.Divider{},
			overduelist.SectionHeader{Title: overduelist.TitleAgreedToVisit, Count: 1},
			overduelist.NewAppointmentRow(sections.AgreedToVisit[0], today),
			overduelist.Divider{},
			overduelist.SectionHeader{Title: overduelist.TitleRemindToCallLater, Count: 0},
			overduelist.Divider{},
			overduelist.SectionHeader{Title: overduelist.TitleRemovedFromOverdue, Count: 1},
			overduelist.NewAppointmentRow(sections.RemovedFromOverdue[0], today),
			overduelist.Divider{},
			overduelist.SectionHeader{Title: overduelist.TitleMoreThanAYearOverdue, Count: 0},
		}))
	})

	It("emits one placeholder instead of rows for an empty pending section", func() {
		rows := overduelist.BuildRows(overdue.Sections{}, today)

		Expect(rows[:3]).To(Equal([]overduelist.ListRow{
			overduelist.SectionHeader{Title: overduelist.TitlePendingToCall, Count: 0},
			overduelist.EmptyPendingPlaceholder{},
			overduelist.PendingListFooter{},
		}))
		Expect(countRows[overduelist.EmptyPendingPlaceholder](rows)).To(Equal(1))
		Expect(countRows[overduelist.AppointmentRow](rows)).To(BeZero())
	})

	It("keeps pending rows in input order with no placeholder", func() {
		pending := []overdue.OverdueAppointment{
			newAppointment("First", today.AddDate(0, 0, -3)),
			newAppointment("Second", today.AddDate(0, 0, -2)),
			newAppointment("Third", today.AddDate(0, 0, -1)),
		}
		rows := overduelist.BuildRows(overdue.Sections{PendingToCall: pending}, today)

		Expect(countRows[overduelist.EmptyPendingPlaceholder](rows)).To(BeZero())
		for i, a := range pending {
			Expect(rows[i+1].(overduelist.AppointmentRow).PatientID).To(Equal(a.PatientID))
		}
	})

	DescribeTable("always emits five headers, four dividers and one footer",
		func(sections overdue.Sections) {
			rows := overduelist.BuildRows(sections, today)

			Expect(countRows[overduelist.SectionHeader](rows)).To(Equal(5))
			Expect(countRows[overduelist.Divider](rows)).To(Equal(4))
			Expect(countRows[overduelist.PendingListFooter](rows)).To(Equal(1))
			Expect(rows[len(rows)-1]).ToNot(Equal(overduelist.Divider{}))
		},
		Entry("empty", overdue.Sections{}),
		Entry("sample", sampleSections()),
		Entry("only more than a year", overdue.Sections{
			MoreThanAYearOverdue: []overdue.OverdueAppointment{newAppointment("Old", today.AddDate(-2, 0, 0))},
		}),
	)

	Describe("NewAppointmentRow", func() {
		It("derives overdue days from today", func() {
			Expect(overduelist.NewAppointmentRow(newAppointment("A", today.AddDate(0, 0, -10)), today).OverdueDays).To(Equal(10))
			Expect(overduelist.NewAppointmentRow(newAppointment("B", today), today).OverdueDays).To(BeZero())
		})

		It("keeps a future scheduled date as negative days", func() {
			Expect(overduelist.NewAppointmentRow(newAppointment("C", today.AddDate(0, 0, 3)), today).OverdueDays).To(Equal(-3))
		})

		It("copies absent phone and village as nil", func() {
			a := newAppointment("D", today.AddDate(0, 0, -1))
			a.PhoneNumber = nil
			row := overduelist.NewAppointmentRow(a, today)

			Expect(row.PhoneNumber).To(BeNil())
			Expect(row.VillageName).To(BeNil())
			Expect(row.Age).To(Equal(35))
			Expect(row.Name).To(Equal("D"))
		})
	})
})

var _ = Describe("row diffing", func() {
	a := newAppointment("Anish Acharya", today.AddDate(0, 0, -10))

	It("matches appointment rows by patient", func() {
		row := overduelist.NewAppointmentRow(a, today)
		moved := overduelist.NewAppointmentRow(a, today.AddDate(0, 0, 1))

		Expect(overduelist.SameItem(row, moved)).To(BeTrue())
		Expect(overduelist.SameContents(row, moved)).To(BeFalse())
	})

	It("compares optional fields by value", func() {
		row := overduelist.NewAppointmentRow(a, today)
		phone := *a.PhoneNumber
		copied := row
		copied.PhoneNumber = &phone

		Expect(overduelist.SameContents(row, copied)).To(BeTrue())
	})

	It("matches headers by title only", func() {
		before := overduelist.SectionHeader{Title: overduelist.TitleAgreedToVisit, Count: 1}
		after := overduelist.SectionHeader{Title: overduelist.TitleAgreedToVisit, Count: 2}

		Expect(overduelist.SameItem(before, after)).To(BeTrue())
		Expect(overduelist.SameContents(before, after)).To(BeFalse())
	})

	It("compares whole row lists", func() {
		sections := sampleSections()
		Expect(overduelist.SameRows(overduelist.BuildRows(sections, today), overduelist.BuildRows(sections, today))).To(BeTrue())
		Expect(overduelist.SameRows(overduelist.BuildRows(sections, today), overduelist.BuildRows(overdue.Sections{}, today))).To(BeFalse())
	})
})
