package overduelist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const defaultEventBuffer = 32

// ErrLoopStopped is returned by Dispatch once the loop has shut down.
var ErrLoopStopped = errors.New("overdue list loop stopped")

// Handler carries out one effect and reports results through dispatch.
type Handler interface {
	Handle(ctx context.Context, effect Effect, dispatch func(Event))
}

// Loop feeds events one at a time through Update. Any number of goroutines may Dispatch;
// a single goroutine owns the model.
type Loop struct {
	update  Update
	handler Handler
	render  func(Model)
	logger  *logrus.Entry

	events chan Event
	model  atomic.Pointer[Model]
	wg     sync.WaitGroup

	// mu guards the lifecycle fields below.
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

func NewLoop(update Update, handler Handler, render func(Model), logger *logrus.Entry) *Loop {
	return &Loop{
		update:  update,
		handler: handler,
		render:  render,
		logger:  logger,
		events:  make(chan Event, defaultEventBuffer),
	}
}

// Start renders the initial model, runs Init effects and begins consuming events.
// It does nothing once the loop has been started or stopped.
func (l *Loop) Start(ctx context.Context, initial Model) {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.started = true
	ctx, l.cancel = context.WithCancel(ctx)
	l.ctx = ctx
	l.wg.Add(1)
	l.mu.Unlock()

	first := l.update.Init(initial)
	model := initial
	if first.HasModel() {
		model = *first.Model
	}
	l.publish(model)
	l.runEffects(ctx, first.Effects)

	go l.run(ctx, model)
}

func (l *Loop) run(ctx context.Context, model Model) {
	defer l.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-l.events:
			result, err := l.update.Update(model, event)
			if err != nil {
				l.logger.WithError(err).Error("Dropping event without a transition")
				continue
			}
			if result.HasModel() {
				model = *result.Model
				l.publish(model)
			}
			l.runEffects(ctx, result.Effects)
		}
	}
}

func (l *Loop) publish(model Model) {
	l.model.Store(&model)
	if l.render != nil {
		l.render(model)
	}
}

func (l *Loop) runEffects(ctx context.Context, effects []Effect) {
	for _, effect := range effects {
		l.wg.Add(1)
		go func(effect Effect) {
			defer l.wg.Done()
			l.handler.Handle(ctx, effect, l.dispatchQuietly)
		}(effect)
	}
}

// Dispatch enqueues an event. It blocks while the buffer is full and fails before Start or after Stop.
func (l *Loop) Dispatch(event Event) error {
	l.mu.Lock()
	ctx, stopped := l.ctx, l.stopped
	l.mu.Unlock()

	if ctx == nil || stopped {
		return ErrLoopStopped
	}
	select {
	case <-ctx.Done():
		return ErrLoopStopped
	case l.events <- event:
		return nil
	}
}

func (l *Loop) dispatchQuietly(event Event) {
	if err := l.Dispatch(event); err != nil {
		l.logger.WithField("event", fmt.Sprintf("%T", event)).Debug("Event arrived after loop stopped")
	}
}

// Model returns the latest published model.
func (l *Loop) Model() Model {
	if m := l.model.Load(); m != nil {
		return *m
	}
	return Model{}
}

// Stop cancels in-flight effects and waits for the loop and its effects to finish.
// A loop stopped before Start never runs.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
}
