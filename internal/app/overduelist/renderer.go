package overduelist

import "time"

// ListView is what the screen needs to draw a loaded overdue list.
type ListView struct {
	Rows             []ListRow
	PendingListState PendingListState
	OverdueCount     int
	IsEmpty          bool
}

// UI draws the overdue list. Every call replaces what was shown before.
type UI interface {
	ShowProgress()
	ShowOverdueAppointments(view ListView)
	ShowLoadFailure(reason string)
}

// Renderer turns every model the loop produces into UI calls. Overdue days are counted from today.
type Renderer struct {
	ui    UI
	today time.Time
}

func NewRenderer(ui UI, today time.Time) *Renderer {
	return &Renderer{ui: ui, today: today}
}

func (r *Renderer) Render(m Model) {
	if !m.SectionsFeatureEnabled {
		return
	}

	switch {
	case m.HasLoadedAppointments:
		r.ui.ShowOverdueAppointments(ListView{
			Rows:             BuildRows(*m.Sections, r.today),
			PendingListState: m.PendingListState,
			OverdueCount:     m.OverdueCount(),
			IsEmpty:          m.IsOverdueSectionsListEmpty(),
		})
	case m.HasLoadFailure():
		r.ui.ShowLoadFailure(m.LoadFailure)
	default:
		r.ui.ShowProgress()
	}
}
