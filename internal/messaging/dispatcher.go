// Package messaging routes commands from the presentation layer to the host
// components. Every handler, timer expiry and tray click runs on the single
// goroutine driving Dispatcher.Run.
package messaging

import (
	"context"

	"github.com/example/vaultdesk/internal/logging"
	"github.com/example/vaultdesk/internal/menu"
	"github.com/example/vaultdesk/internal/protocol"
	"github.com/example/vaultdesk/internal/storage"
)

const queueSize = 128

// Tray is the tray lifecycle collaborator.
type Tray interface {
	ShowTray()
	RemoveTray()
	HideToTray()
	RestoreFromTray()
}

// AppMenu receives the application menu state.
type AppMenu interface {
	UpdateApplicationMenuState(isAuthenticated, isLocked bool)
}

// TrayMenu rebuilds the tray menu from vault state.
type TrayMenu interface {
	UpdateTrayMenu(isAuthenticated, isLocked bool, favorites []protocol.Favorite)
}

// LoginItems toggles launching at login.
type LoginItems interface {
	Init() error
	Add() error
	Remove() error
}

// BrowserIntegration manages the native messaging bridge.
type BrowserIntegration interface {
	GenerateManifests() error
	RemoveManifests() error
	Listen() error
	Stop() error
}

// Options wires a Dispatcher to its collaborators. Nil collaborators turn the
// commands that need them into no-ops.
type Options struct {
	Store      storage.Store
	Windows    menu.WindowProvider
	Sender     protocol.Sender
	Tray       Tray
	AppMenu    AppMenu
	TrayMenu   TrayMenu
	LoginItems LoginItems
	Browser    BrowserIntegration
	Clock      Clock
	// Quit is invoked when the tray exit entry is chosen.
	Quit func()
}

// Dispatcher interprets inbound commands.
type Dispatcher struct {
	opts      Options
	scheduler *Scheduler

	queue     chan func()
	done      chan struct{}
	hidden    bool
	listening bool
}

// NewDispatcher returns a Dispatcher bound to opts.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:  opts,
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	d.scheduler = NewScheduler(opts.Clock, d.Post, d.checkSync)
	return d
}

// Scheduler exposes the sync scheduler owned by d.
func (d *Dispatcher) Scheduler() *Scheduler {
	return d.scheduler
}

// Init arms the first sync check and reconciles the login item state.
func (d *Dispatcher) Init() {
	d.scheduler.ScheduleNextSync()
	if d.opts.LoginItems != nil {
		if err := d.opts.LoginItems.Init(); err != nil {
			logging.Warnf("messaging: reconcile login item: %v", err)
		}
	}
	d.listening = true
	logging.Infof("messaging: dispatcher listening")
}

// Listening reports whether Init has run.
func (d *Dispatcher) Listening() bool {
	return d.listening
}

// Post enqueues fn on the dispatch goroutine. Work posted after Run has
// returned is dropped.
func (d *Dispatcher) Post(fn func()) {
	select {
	case d.queue <- fn:
	case <-d.done:
	}
}

// Deliver posts cmd for dispatch. It is safe to call from any goroutine.
func (d *Dispatcher) Deliver(cmd protocol.Command) {
	d.Post(func() { d.OnMessage(cmd) })
}

// Run drains posted work until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	defer d.scheduler.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-d.queue:
			fn()
		}
	}
}

// OnMessage performs the side effects of one command.
func (d *Dispatcher) OnMessage(cmd protocol.Command) {
	logging.Debugf("messaging: dispatch %s", cmd.Name())

	switch c := cmd.(type) {
	case protocol.ScheduleNextSync:
		d.scheduler.ScheduleNextSync()
	case protocol.UpdateAppMenu:
		if d.opts.AppMenu != nil {
			d.opts.AppMenu.UpdateApplicationMenuState(c.IsAuthenticated, c.IsLocked)
		}
		if d.opts.TrayMenu != nil {
			d.opts.TrayMenu.UpdateTrayMenu(c.IsAuthenticated, c.IsLocked, c.Favorites)
		}
	case protocol.MinimizeOnCopy:
		d.minimizeOnCopy()
	case protocol.ShowTray:
		if d.opts.Tray != nil {
			d.opts.Tray.ShowTray()
		}
	case protocol.RemoveTray:
		if d.opts.Tray != nil {
			d.opts.Tray.RemoveTray()
		}
	case protocol.HideToTray:
		d.hideToTray()
	case protocol.AddOpenAtLogin:
		if d.opts.LoginItems != nil {
			if err := d.opts.LoginItems.Add(); err != nil {
				logging.Warnf("messaging: enable open at login: %v", err)
			}
		}
	case protocol.RemoveOpenAtLogin:
		if d.opts.LoginItems != nil {
			if err := d.opts.LoginItems.Remove(); err != nil {
				logging.Warnf("messaging: disable open at login: %v", err)
			}
		}
	case protocol.SetFocus:
		d.setFocus()
	case protocol.EnableBrowserIntegration:
		d.enableBrowserIntegration()
	case protocol.DisableBrowserIntegration:
		d.disableBrowserIntegration()
	case protocol.Unknown:
		logging.Debugf("messaging: ignoring unknown command %q", c.Command)
	default:
		logging.Debugf("messaging: ignoring unhandled command %T", cmd)
	}
}

// HandleTrayAction performs the action bound to a tray entry.
func (d *Dispatcher) HandleTrayAction(entry menu.Entry) {
	switch entry.Action.Kind {
	case menu.ActionNotify:
		d.send(entry.Action.Notification)
	case menu.ActionToggleWindow:
		if d.hidden {
			d.setFocus()
		} else {
			d.hideToTray()
		}
	case menu.ActionQuit:
		if d.opts.Quit != nil {
			d.opts.Quit()
		}
	}
}

func (d *Dispatcher) checkSync() {
	if d.window() == nil {
		logging.Debugf("messaging: no window; skipping sync check")
		return
	}
	d.send(protocol.CheckSyncVault())
}

func (d *Dispatcher) minimizeOnCopy() {
	if d.opts.Store == nil {
		return
	}
	minimize, err := storage.GetBool(d.opts.Store, storage.KeyMinimizeOnCopyToClipboard)
	if err != nil {
		logging.Warnf("messaging: read %s: %v", storage.KeyMinimizeOnCopyToClipboard, err)
		return
	}
	if !minimize {
		return
	}
	if w := d.window(); w != nil {
		w.Minimize()
	}
}

func (d *Dispatcher) hideToTray() {
	if d.opts.Tray != nil {
		d.opts.Tray.HideToTray()
	}
	d.hidden = true
}

func (d *Dispatcher) setFocus() {
	if d.opts.Tray != nil {
		d.opts.Tray.RestoreFromTray()
	}
	d.hidden = false
	if w := d.window(); w != nil {
		w.Focus()
	}
}

func (d *Dispatcher) enableBrowserIntegration() {
	if d.opts.Browser == nil {
		return
	}
	if err := d.opts.Browser.GenerateManifests(); err != nil {
		logging.Warnf("messaging: generate native messaging manifests: %v", err)
	}
	if err := d.opts.Browser.Listen(); err != nil {
		logging.Warnf("messaging: start native messaging listener: %v", err)
	}
}

func (d *Dispatcher) disableBrowserIntegration() {
	if d.opts.Browser == nil {
		return
	}
	if err := d.opts.Browser.RemoveManifests(); err != nil {
		logging.Warnf("messaging: remove native messaging manifests: %v", err)
	}
	if err := d.opts.Browser.Stop(); err != nil {
		logging.Warnf("messaging: stop native messaging listener: %v", err)
	}
}

func (d *Dispatcher) window() menu.Window {
	if d.opts.Windows == nil {
		return nil
	}
	return d.opts.Windows.Window()
}

func (d *Dispatcher) send(n protocol.Notification) {
	if d.opts.Sender == nil {
		return
	}
	d.opts.Sender.Send(n)
}
