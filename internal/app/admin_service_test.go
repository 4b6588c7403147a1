package app_test

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app"
	"overdue_followup_bot/internal/domain/worker"
	idb "overdue_followup_bot/internal/infra/database"
)

var _ = Describe("AdminService", func() {
	const adminID = int64(1)

	var (
		ctx        context.Context
		workers    *fakeWorkerRepo
		facilities *fakeFacilityRepo
		phc        = newFacility("PHC Bathinda")
		service    *app.AdminService
	)

	BeforeEach(func() {
		ctx = context.Background()
		workers = newFakeWorkerRepo()
		facilities = newFakeFacilityRepo(phc)
		service = app.NewAdminService(workers, facilities, adminID)
	})

	Describe("AddWorker", func() {
		It("rejects anyone but the admin", func() {
			_, err := service.AddWorker(ctx, 2, 100, phc.ID, "Asha", "")
			Expect(err).To(MatchError(app.ErrAdminNotAuthorized))
		})

		It("rejects unknown facilities", func() {
			_, err := service.AddWorker(ctx, adminID, 100, uuid.New(), "Asha", "")
			Expect(err).To(MatchError(idb.ErrFacilityNotFound))
		})

		It("creates an active worker", func() {
			w, err := service.AddWorker(ctx, adminID, 100, phc.ID, "Asha", "Devi")
			Expect(err).ToNot(HaveOccurred())
			Expect(w.IsActive).To(BeTrue())
			Expect(w.FacilityID).To(Equal(phc.ID))
			Expect(w.FullName()).To(Equal("Asha Devi"))
			Expect(workers.workers).To(HaveKey(int64(100)))
		})

		It("leaves the last name null when omitted", func() {
			w, err := service.AddWorker(ctx, adminID, 100, phc.ID, "Asha", "")
			Expect(err).ToNot(HaveOccurred())
			Expect(w.LastName.Valid).To(BeFalse())
		})

		It("refuses to add an active worker twice", func() {
			workers.workers[100] = &worker.Worker{TelegramID: 100, IsActive: true}
			_, err := service.AddWorker(ctx, adminID, 100, phc.ID, "Asha", "")
			Expect(err).To(MatchError(app.ErrWorkerAlreadyExists))
		})

		It("reactivates an inactive worker with the new details", func() {
			workers.workers[100] = &worker.Worker{ID: 5, TelegramID: 100, FirstName: "Old", IsActive: false}

			w, err := service.AddWorker(ctx, adminID, 100, phc.ID, "Asha", "")
			Expect(err).ToNot(HaveOccurred())
			Expect(w.ID).To(Equal(int64(5)))
			Expect(w.IsActive).To(BeTrue())
			Expect(w.FirstName).To(Equal("Asha"))
			Expect(w.FacilityID).To(Equal(phc.ID))
			Expect(workers.updates).To(Equal(1))
		})

		It("maps a unique violation race to already exists", func() {
			workers.createErr = idb.ErrDuplicateTelegramID
			_, err := service.AddWorker(ctx, adminID, 100, phc.ID, "Asha", "")
			Expect(err).To(MatchError(app.ErrWorkerAlreadyExists))
		})
	})

	Describe("RemoveWorker", func() {
		It("deactivates an active worker", func() {
			workers.workers[100] = &worker.Worker{TelegramID: 100, IsActive: true, LastName: sql.NullString{}}

			w, err := service.RemoveWorker(ctx, adminID, 100)
			Expect(err).ToNot(HaveOccurred())
			Expect(w.IsActive).To(BeFalse())
			Expect(workers.updates).To(Equal(1))
		})

		It("reports workers that are already inactive", func() {
			workers.workers[100] = &worker.Worker{TelegramID: 100, IsActive: false}

			w, err := service.RemoveWorker(ctx, adminID, 100)
			Expect(err).To(MatchError(app.ErrWorkerAlreadyInactive))
			Expect(w).ToNot(BeNil())
			Expect(workers.updates).To(BeZero())
		})

		It("reports unknown workers", func() {
			_, err := service.RemoveWorker(ctx, adminID, 100)
			Expect(err).To(MatchError(idb.ErrWorkerNotFound))
		})

		It("rejects anyone but the admin", func() {
			_, err := service.RemoveWorker(ctx, 2, 100)
			Expect(err).To(MatchError(app.ErrAdminNotAuthorized))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			workers.workers[100] = &worker.Worker{TelegramID: 100, IsActive: true}
			workers.workers[200] = &worker.Worker{TelegramID: 200, IsActive: false}
		})

		It("lists active workers only", func() {
			active, err := service.ListActiveWorkers(ctx, adminID)
			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].TelegramID).To(Equal(int64(100)))
		})

		It("lists every worker", func() {
			all, err := service.ListAllWorkers(ctx, adminID)
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("lists facilities for the admin only", func() {
			list, err := service.ListFacilities(ctx, adminID)
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(ConsistOf(phc))

			_, err = service.ListFacilities(ctx, 2)
			Expect(err).To(MatchError(app.ErrAdminNotAuthorized))
		})
	})
})
