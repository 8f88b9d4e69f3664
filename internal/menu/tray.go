package menu

import (
	"context"

	"github.com/example/vaultdesk/internal/logging"
)

// Window is the presentation window as seen by the host.
type Window interface {
	Minimize()
	Focus()
	Restore()
	Hide()
	Show()
}

// WindowProvider yields the current window, or nil when there is none.
type WindowProvider interface {
	Window() Window
}

// UpdatePayload is one complete tray state handed to the widget controller.
type UpdatePayload struct {
	Visible  bool
	Template Template
	Tooltip  string
	Locked   bool
}

type trayController interface {
	Run(ctx context.Context, updates <-chan UpdatePayload) error
}

// Tray owns the tray template and its visibility. The template is built on the
// first ShowTray and lives until shutdown; removing the tray only hides it.
// Methods are called from the dispatch goroutine only; the widget controller
// receives immutable snapshots over a coalescing channel.
type Tray struct {
	windows WindowProvider
	labels  Labels

	template     Template
	visible      bool
	tooltip      string
	locked       bool
	shownForHide bool

	ctrl    trayController
	updates chan UpdatePayload
}

// NewTray constructs a Tray. onClick runs on the widget goroutine whenever an
// actionable entry is activated; callers are expected to hand the entry back
// to their own event loop.
func NewTray(windows WindowProvider, labels Labels, onClick func(Entry)) *Tray {
	if labels == nil {
		labels = English
	}
	return &Tray{
		windows: windows,
		labels:  labels,
		locked:  true,
		ctrl:    newTrayController(onClick),
		updates: make(chan UpdatePayload, 1),
	}
}

// Run drives the tray widget until ctx is canceled.
func (t *Tray) Run(ctx context.Context) error {
	if t.ctrl == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return t.ctrl.Run(ctx, t.updates)
}

// Visible reports whether the tray is shown.
func (t *Tray) Visible() bool {
	return t.visible
}

// ContextMenuTemplate returns the live template, or nil before the tray was
// first constructed.
func (t *Tray) ContextMenuTemplate() Template {
	return t.template
}

// UpdateContextMenu swaps in a new template. It is kept while the tray is
// removed and redrawn on the next ShowTray. Ignored before the tray was first
// constructed.
func (t *Tray) UpdateContextMenu(tmpl Template) {
	if t.template == nil || tmpl == nil {
		return
	}
	t.template = tmpl
	if t.visible {
		t.publish()
	}
}

// ShowTray shows the tray, building the default template on first use.
func (t *Tray) ShowTray() {
	t.shownForHide = false
	if t.visible {
		return
	}
	if t.template == nil {
		t.template = DefaultTemplate(t.labels)
	}
	t.visible = true
	logging.Debugf("tray shown")
	t.publish()
}

// RemoveTray hides the tray icon. The template is kept.
func (t *Tray) RemoveTray() {
	t.shownForHide = false
	if !t.visible {
		return
	}
	t.visible = false
	logging.Debugf("tray removed")
	t.publish()
}

// HideToTray makes sure the tray is visible and hides the window.
func (t *Tray) HideToTray() {
	forHide := t.shownForHide || !t.visible
	t.ShowTray()
	t.shownForHide = forHide
	if w := t.window(); w != nil {
		w.Hide()
	}
}

// RestoreFromTray shows the window again. A tray that only exists because of
// HideToTray is removed.
func (t *Tray) RestoreFromTray() {
	if w := t.window(); w != nil {
		w.Show()
	}
	if t.shownForHide {
		t.RemoveTray()
	}
}

// SetStatus updates the tooltip and icon from the vault state.
func (t *Tray) SetStatus(isAuthenticated, isLocked bool) {
	switch {
	case !isAuthenticated:
		t.tooltip = t.labels.T("loggedOut")
	case isLocked:
		t.tooltip = t.labels.T("locked")
	default:
		t.tooltip = t.labels.T("unlocked")
	}
	t.locked = !isAuthenticated || isLocked
	if t.visible {
		t.publish()
	}
}

func (t *Tray) window() Window {
	if t.windows == nil {
		return nil
	}
	return t.windows.Window()
}

func (t *Tray) publish() {
	update := UpdatePayload{
		Visible:  t.visible,
		Template: t.template.Clone(),
		Tooltip:  t.tooltip,
		Locked:   t.locked,
	}

	select {
	case t.updates <- update:
	default:
		select {
		case <-t.updates:
		default:
		}
		select {
		case t.updates <- update:
		default:
		}
	}
}
