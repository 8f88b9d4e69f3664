package menu

// StatusSink receives the vault state for display.
type StatusSink interface {
	SetStatus(isAuthenticated, isLocked bool)
}

// AppMenu tracks the application menu state pushed by the presentation layer.
type AppMenu struct {
	sink            StatusSink
	isAuthenticated bool
	isLocked        bool
}

// NewAppMenu returns an AppMenu forwarding state changes to sink, which may be nil.
func NewAppMenu(sink StatusSink) *AppMenu {
	return &AppMenu{sink: sink, isLocked: true}
}

// UpdateApplicationMenuState records the authentication and lock state.
func (m *AppMenu) UpdateApplicationMenuState(isAuthenticated, isLocked bool) {
	m.isAuthenticated = isAuthenticated
	m.isLocked = isLocked
	if m.sink != nil {
		m.sink.SetStatus(isAuthenticated, isLocked)
	}
}

// State returns the last recorded state.
func (m *AppMenu) State() (isAuthenticated, isLocked bool) {
	return m.isAuthenticated, m.isLocked
}
