package overduelist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
)

// ErrNoSession is returned when a chat has no open overdue list.
var ErrNoSession = errors.New("no overdue list open for this chat")

// Screen is a chat that can draw the list and carry out UI actions.
type Screen interface {
	UI
	UIActions
}

// SessionConfig holds the product switches every new session is built with.
type SessionConfig struct {
	SectionsFeatureEnabled bool
	CanGeneratePdf         bool
	UnknownNetworkStatus   NetworkStatus
}

// SessionManager keeps one event loop per chat.
type SessionManager struct {
	cfg          SessionConfig
	facilities   facility.Repository
	appointments overdue.Repository
	downloads    Downloads
	newScreen    func(chatID int64) Screen
	today        func() time.Time
	logger       *logrus.Entry

	mu       sync.Mutex
	sessions map[int64]*Loop
}

func NewSessionManager(
	cfg SessionConfig,
	facilities facility.Repository,
	appointments overdue.Repository,
	downloads Downloads,
	newScreen func(chatID int64) Screen,
	today func() time.Time,
	logger *logrus.Entry,
) *SessionManager {
	return &SessionManager{
		cfg:          cfg,
		facilities:   facilities,
		appointments: appointments,
		downloads:    downloads,
		newScreen:    newScreen,
		today:        today,
		logger:       logger,
		sessions:     make(map[int64]*Loop),
	}
}

// Open starts a fresh overdue list for the chat, replacing any open one.
func (m *SessionManager) Open(ctx context.Context, chatID int64, facilityID uuid.UUID) {
	logCtx := m.logger.WithFields(logrus.Fields{"chat_id": chatID, "facility_id": facilityID})

	// Loads, rows and patient lookups all use the date the session opened on.
	today := m.today()
	sessionToday := func() time.Time { return today }

	screen := m.newScreen(chatID)
	update := Update{
		Today:                today,
		CanGeneratePdf:       m.cfg.CanGeneratePdf,
		UnknownNetworkStatus: m.cfg.UnknownNetworkStatus,
	}
	handler := NewEffectHandler(chatID, facilityID, m.facilities, m.appointments, m.downloads, screen, sessionToday, logCtx)
	renderer := NewRenderer(screen, today)
	loop := NewLoop(update, handler, renderer.Render, logCtx)

	// Start before publishing so a concurrent Open can always stop this loop.
	loop.Start(ctx, NewModel(m.cfg.SectionsFeatureEnabled))

	m.mu.Lock()
	previous := m.sessions[chatID]
	m.sessions[chatID] = loop
	m.mu.Unlock()

	if previous != nil {
		previous.Stop()
	}
	logCtx.Info("Overdue list session opened")
}

// Dispatch routes an event to the chat's open session.
func (m *SessionManager) Dispatch(chatID int64, event Event) error {
	m.mu.Lock()
	loop := m.sessions[chatID]
	m.mu.Unlock()

	if loop == nil {
		return ErrNoSession
	}
	return loop.Dispatch(event)
}

// Model returns the chat's current model.
func (m *SessionManager) Model(chatID int64) (Model, error) {
	m.mu.Lock()
	loop := m.sessions[chatID]
	m.mu.Unlock()

	if loop == nil {
		return Model{}, ErrNoSession
	}
	return loop.Model(), nil
}

func (m *SessionManager) Close(chatID int64) {
	m.mu.Lock()
	loop := m.sessions[chatID]
	delete(m.sessions, chatID)
	m.mu.Unlock()

	if loop != nil {
		loop.Stop()
	}
}

func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[int64]*Loop)
	m.mu.Unlock()

	for _, loop := range sessions {
		loop.Stop()
	}
	m.logger.WithField("sessions", len(sessions)).Info("Overdue list sessions closed")
}
