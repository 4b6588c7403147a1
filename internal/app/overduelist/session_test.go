package overduelist_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/domain/facility"
)

// parkedFacilities holds every facility lookup until its loop is cancelled and counts the ones still waiting.
type parkedFacilities struct {
	waiting atomic.Int32
}

func (p *parkedFacilities) GetByID(ctx context.Context, id uuid.UUID) (*facility.Facility, error) {
	p.waiting.Add(1)
	defer p.waiting.Add(-1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *parkedFacilities) ListAll(ctx context.Context) ([]*facility.Facility, error) {
	return nil, nil
}

var _ = Describe("SessionManager", func() {
	const chatID = int64(42)

	var (
		f         *facility.Facility
		screensMu sync.Mutex
		screens   []*recordingScreen
		manager   *overduelist.SessionManager

		clockMu sync.Mutex
		clock   time.Time
	)

	currentDay := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return clock
	}

	newScreen := func(chatID int64) overduelist.Screen {
		screen := &recordingScreen{}
		screensMu.Lock()
		screens = append(screens, screen)
		screensMu.Unlock()
		return screen
	}

	newManager := func(cfg overduelist.SessionConfig) *overduelist.SessionManager {
		sections := sampleSections()
		return overduelist.NewSessionManager(
			cfg,
			&fakeFacilities{facility: f},
			&fakeAppointments{appointments: sections.All()},
			&fakeDownloads{},
			newScreen,
			currentDay,
			quietLogger(),
		)
	}

	screen := func(i int) *recordingScreen {
		screensMu.Lock()
		defer screensMu.Unlock()
		return screens[i]
	}

	BeforeEach(func() {
		f = newFacility(true)
		screens = nil
		clock = today
		manager = newManager(overduelist.SessionConfig{
			SectionsFeatureEnabled: true,
			CanGeneratePdf:         true,
			UnknownNetworkStatus:   overduelist.NetworkInactive,
		})
		DeferCleanup(manager.CloseAll)
	})

	It("loads the facility and its overdue list when opened", func() {
		manager.Open(context.Background(), chatID, f.ID)

		Eventually(screen(0).Calls).Should(ContainElement("list:3:SEE_LESS"))
		model, err := manager.Model(chatID)
		Expect(err).ToNot(HaveOccurred())
		Expect(model.Facility).To(Equal(f))
	})

	It("routes events to the chat's session", func() {
		manager.Open(context.Background(), chatID, f.ID)
		Eventually(screen(0).Calls).Should(ContainElement("list:3:SEE_LESS"))

		Expect(manager.Dispatch(chatID, overduelist.PendingListFooterTapped{})).To(Succeed())
		Eventually(screen(0).Calls).Should(ContainElement("list:3:SEE_ALL"))
	})

	It("shows the legacy list when sections are disabled", func() {
		legacy := newManager(overduelist.SessionConfig{SectionsFeatureEnabled: false})
		DeferCleanup(legacy.CloseAll)

		legacy.Open(context.Background(), chatID, f.ID)
		Eventually(screen(0).Calls).Should(Equal([]string{"legacy:3:true"}))
	})

	It("reports chats without a session", func() {
		Expect(manager.Dispatch(7, overduelist.RetryLoadTapped{})).To(MatchError(overduelist.ErrNoSession))
		_, err := manager.Model(7)
		Expect(err).To(MatchError(overduelist.ErrNoSession))
	})

	It("replaces an open session on reopen", func() {
		manager.Open(context.Background(), chatID, f.ID)
		manager.Open(context.Background(), chatID, f.ID)

		Eventually(screen(1).Calls).Should(ContainElement("list:3:SEE_LESS"))
		Expect(manager.Dispatch(chatID, overduelist.PendingListFooterTapped{})).To(Succeed())
		Eventually(screen(1).Calls).Should(ContainElement("list:3:SEE_ALL"))
	})

	It("counts overdue days from the date the session opened on", func() {
		manager.Open(context.Background(), chatID, f.ID)
		Eventually(screen(0).Calls).Should(ContainElement("list:3:SEE_LESS"))

		clockMu.Lock()
		clock = today.AddDate(0, 0, 1)
		clockMu.Unlock()

		Expect(manager.Dispatch(chatID, overduelist.PendingListFooterTapped{})).To(Succeed())
		Eventually(screen(0).Calls).Should(ContainElement("list:3:SEE_ALL"))

		row, ok := screen(0).LastView().Rows[1].(overduelist.AppointmentRow)
		Expect(ok).To(BeTrue())
		Expect(row.OverdueDays).To(Equal(10))
	})

	It("keeps exactly one live loop when a chat is opened concurrently", func() {
		facilities := &parkedFacilities{}
		concurrent := overduelist.NewSessionManager(
			overduelist.SessionConfig{SectionsFeatureEnabled: true},
			facilities,
			&fakeAppointments{},
			&fakeDownloads{},
			newScreen,
			currentDay,
			quietLogger(),
		)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				concurrent.Open(context.Background(), chatID, f.ID)
				_ = concurrent.Dispatch(chatID, overduelist.PendingListFooterTapped{})
			}()
		}
		wg.Wait()

		Eventually(facilities.waiting.Load).Should(BeEquivalentTo(1))
		Consistently(facilities.waiting.Load, 100*time.Millisecond).Should(BeEquivalentTo(1))

		concurrent.CloseAll()
		Expect(facilities.waiting.Load()).To(BeZero())
	})

	It("forgets closed sessions", func() {
		manager.Open(context.Background(), chatID, f.ID)
		manager.Close(chatID)

		Expect(manager.Dispatch(chatID, overduelist.RetryLoadTapped{})).To(MatchError(overduelist.ErrNoSession))
	})
})
