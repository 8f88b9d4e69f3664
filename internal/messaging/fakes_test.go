package messaging

import (
	"sort"
	"sync"
	"time"

	"github.com/example/vaultdesk/internal/menu"
	"github.com/example/vaultdesk/internal/protocol"
)

type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock    *manualClock
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, deadline: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and runs every timer that came due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.deadline <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	for _, t := range due {
		t.fn()
	}
}

// Armed reports how many timers are neither stopped nor fired.
func (c *manualClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recordingSender struct {
	mu   sync.Mutex
	sent []protocol.Notification
}

func (s *recordingSender) Send(n protocol.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

func (s *recordingSender) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, n := range s.sent {
		out[i] = n.Command
	}
	return out
}

type fakeWindow struct {
	minimized, focused int
}

func (w *fakeWindow) Minimize() { w.minimized++ }
func (w *fakeWindow) Focus()    { w.focused++ }
func (w *fakeWindow) Restore()  {}
func (w *fakeWindow) Hide()     {}
func (w *fakeWindow) Show()     {}

type windowSlot struct {
	win *fakeWindow
}

func (s *windowSlot) Window() menu.Window {
	if s.win == nil {
		return nil
	}
	return s.win
}

type fakeTray struct {
	calls []string
}

func (t *fakeTray) ShowTray()        { t.calls = append(t.calls, "show") }
func (t *fakeTray) RemoveTray()      { t.calls = append(t.calls, "remove") }
func (t *fakeTray) HideToTray()      { t.calls = append(t.calls, "hide") }
func (t *fakeTray) RestoreFromTray() { t.calls = append(t.calls, "restore") }

type fakeAppMenu struct {
	updates int
	auth    bool
	locked  bool
}

func (m *fakeAppMenu) UpdateApplicationMenuState(auth, locked bool) {
	m.updates++
	m.auth, m.locked = auth, locked
}

type fakeTrayMenu struct {
	favorites []protocol.Favorite
	updates   int
}

func (m *fakeTrayMenu) UpdateTrayMenu(_, _ bool, favorites []protocol.Favorite) {
	m.updates++
	m.favorites = favorites
}

type fakeLoginItems struct {
	inits, adds, removes int
	err                  error
}

func (l *fakeLoginItems) Init() error   { l.inits++; return l.err }
func (l *fakeLoginItems) Add() error    { l.adds++; return l.err }
func (l *fakeLoginItems) Remove() error { l.removes++; return l.err }

type fakeBrowser struct {
	calls []string
}

func (b *fakeBrowser) GenerateManifests() error { b.calls = append(b.calls, "generate"); return nil }
func (b *fakeBrowser) RemoveManifests() error   { b.calls = append(b.calls, "remove"); return nil }
func (b *fakeBrowser) Listen() error            { b.calls = append(b.calls, "listen"); return nil }
func (b *fakeBrowser) Stop() error              { b.calls = append(b.calls, "stop"); return nil }

// drain runs everything posted to d without a Run loop.
func drain(d *Dispatcher) {
	for {
		select {
		case fn := <-d.queue:
			fn()
		default:
			return
		}
	}
}
