package overduelist_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app/overduelist"
)

// effectRecorder collects effects without running them.
type effectRecorder struct {
	mu      sync.Mutex
	effects []overduelist.Effect
}

func (r *effectRecorder) Handle(ctx context.Context, effect overduelist.Effect, dispatch func(overduelist.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, effect)
}

func (r *effectRecorder) Effects() []overduelist.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]overduelist.Effect(nil), r.effects...)
}

var _ = Describe("Loop", func() {
	var (
		update   overduelist.Update
		recorder *effectRecorder
		loop     *overduelist.Loop
	)

	BeforeEach(func() {
		update = overduelist.Update{Today: today, CanGeneratePdf: true, UnknownNetworkStatus: overduelist.NetworkInactive}
		recorder = &effectRecorder{}
		loop = overduelist.NewLoop(update, recorder, nil, quietLogger())
	})

	It("refuses events before it starts", func() {
		Expect(loop.Dispatch(overduelist.PendingListFooterTapped{})).To(MatchError(overduelist.ErrLoopStopped))
	})

	It("runs the init effects and publishes the initial model", func() {
		loop.Start(context.Background(), overduelist.NewModel(true))
		DeferCleanup(loop.Stop)

		Eventually(recorder.Effects).Should(Equal([]overduelist.Effect{overduelist.LoadCurrentFacility{}}))
		Expect(loop.Model()).To(Equal(overduelist.NewModel(true)))
	})

	It("applies events in order", func() {
		loop.Start(context.Background(), overduelist.NewModel(true))
		DeferCleanup(loop.Stop)

		sections := sampleSections()
		Expect(loop.Dispatch(overduelist.OverdueAppointmentsLoaded{Sections: sections})).To(Succeed())
		Expect(loop.Dispatch(overduelist.PendingListFooterTapped{})).To(Succeed())

		Eventually(func() overduelist.PendingListState { return loop.Model().PendingListState }).Should(Equal(overduelist.SeeAll))
		Expect(loop.Model().HasLoadedAppointments).To(BeTrue())
		Expect(loop.Model().OverdueCount()).To(Equal(3))
	})

	It("hands effect-only results to the handler without changing the model", func() {
		loop.Start(context.Background(), overduelist.NewModel(true))
		DeferCleanup(loop.Stop)

		Expect(loop.Dispatch(overduelist.DownloadRequested{NetworkStatus: overduelist.NetworkInactive})).To(Succeed())

		Eventually(recorder.Effects).Should(ContainElement(overduelist.ShowNoConnectionDialog{}))
		Expect(loop.Model()).To(Equal(overduelist.NewModel(true)))
	})

	It("keeps running after an event without a transition", func() {
		loop.Start(context.Background(), overduelist.NewModel(true))
		DeferCleanup(loop.Stop)

		Expect(loop.Dispatch(nil)).To(Succeed())
		Expect(loop.Dispatch(overduelist.PendingListFooterTapped{})).To(Succeed())

		Eventually(func() overduelist.PendingListState { return loop.Model().PendingListState }).Should(Equal(overduelist.SeeAll))
	})

	It("renders every published model", func() {
		screen := &recordingScreen{}
		loop = overduelist.NewLoop(update, recorder, overduelist.NewRenderer(screen, today).Render, quietLogger())
		loop.Start(context.Background(), overduelist.NewModel(true))
		DeferCleanup(loop.Stop)

		Expect(loop.Dispatch(overduelist.OverdueAppointmentsLoaded{Sections: sampleSections()})).To(Succeed())

		Eventually(screen.Calls).Should(Equal([]string{"progress", "list:3:SEE_LESS"}))
	})

	It("refuses events after it stops", func() {
		loop.Start(context.Background(), overduelist.NewModel(true))
		loop.Stop()
		loop.Stop()

		Expect(loop.Dispatch(overduelist.PendingListFooterTapped{})).To(MatchError(overduelist.ErrLoopStopped))
	})

	It("never runs when stopped before it starts", func() {
		screen := &recordingScreen{}
		loop = overduelist.NewLoop(update, recorder, overduelist.NewRenderer(screen, today).Render, quietLogger())
		loop.Stop()
		loop.Start(context.Background(), overduelist.NewModel(true))
		DeferCleanup(loop.Stop)

		Expect(loop.Dispatch(overduelist.PendingListFooterTapped{})).To(MatchError(overduelist.ErrLoopStopped))
		Consistently(screen.Calls, 100*time.Millisecond).Should(BeEmpty())
		Expect(recorder.Effects()).To(BeEmpty())
	})

	It("ignores a second start", func() {
		loop.Start(context.Background(), overduelist.NewModel(true))
		loop.Start(context.Background(), overduelist.NewModel(false))
		DeferCleanup(loop.Stop)

		Eventually(recorder.Effects).Should(HaveLen(1))
		Consistently(recorder.Effects, 100*time.Millisecond).Should(HaveLen(1))
		Expect(loop.Model().SectionsFeatureEnabled).To(BeTrue())
	})

	It("stops when the parent context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		loop.Start(ctx, overduelist.NewModel(true))
		cancel()

		Eventually(func() error { return loop.Dispatch(overduelist.PendingListFooterTapped{}) }).Should(MatchError(overduelist.ErrLoopStopped))
		loop.Stop()
	})
})
