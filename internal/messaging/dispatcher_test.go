package messaging

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/vaultdesk/internal/menu"
	"github.com/example/vaultdesk/internal/protocol"
	"github.com/example/vaultdesk/internal/storage"
)

type harness struct {
	d       *Dispatcher
	clock   *manualClock
	store   *storage.Memory
	windows *windowSlot
	sender  *recordingSender
	tray    *fakeTray
	appMenu *fakeAppMenu
	menu    *fakeTrayMenu
	login   *fakeLoginItems
	browser *fakeBrowser
	quits   int
}

func newHarness() *harness {
	h := &harness{
		clock:   &manualClock{},
		store:   storage.NewMemory(),
		windows: &windowSlot{win: &fakeWindow{}},
		sender:  &recordingSender{},
		tray:    &fakeTray{},
		appMenu: &fakeAppMenu{},
		menu:    &fakeTrayMenu{},
		login:   &fakeLoginItems{},
		browser: &fakeBrowser{},
	}
	h.d = NewDispatcher(Options{
		Store:      h.store,
		Windows:    h.windows,
		Sender:     h.sender,
		Tray:       h.tray,
		AppMenu:    h.appMenu,
		TrayMenu:   h.menu,
		LoginItems: h.login,
		Browser:    h.browser,
		Clock:      h.clock,
		Quit:       func() { h.quits++ },
	})
	return h
}

func TestInitSchedulesAndReconciles(t *testing.T) {
	h := newHarness()
	h.d.Init()

	if !h.d.Scheduler().Pending() {
		t.Fatalf("expected first sync to be scheduled")
	}
	if h.login.inits != 1 {
		t.Fatalf("expected login item reconcile, got %d", h.login.inits)
	}
	if !h.d.Listening() {
		t.Fatalf("expected dispatcher to be listening")
	}
}

func TestSyncCheckSentOnExpiry(t *testing.T) {
	h := newHarness()
	h.d.OnMessage(protocol.ScheduleNextSync{})

	h.clock.Advance(SyncInterval)
	drain(h.d)

	if got := h.sender.Commands(); !reflect.DeepEqual(got, []string{protocol.CommandCheckSyncVault}) {
		t.Fatalf("unexpected outbound %v", got)
	}
}

func TestSyncCheckSkippedWithoutWindow(t *testing.T) {
	h := newHarness()
	h.windows.win = nil
	h.d.OnMessage(protocol.ScheduleNextSync{})

	h.clock.Advance(SyncInterval)
	drain(h.d)

	if got := h.sender.Commands(); len(got) != 0 {
		t.Fatalf("expected no outbound, got %v", got)
	}
	if h.d.Scheduler().Pending() {
		t.Fatalf("expiry without a window must not re-arm")
	}
}

func TestUpdateAppMenuFansOut(t *testing.T) {
	h := newHarness()
	favorites := []protocol.Favorite{{ID: "a", Name: "A"}}
	h.d.OnMessage(protocol.UpdateAppMenu{IsAuthenticated: true, IsLocked: false, Favorites: favorites})

	if h.appMenu.updates != 1 || !h.appMenu.auth || h.appMenu.locked {
		t.Fatalf("unexpected app menu state %+v", h.appMenu)
	}
	if h.menu.updates != 1 || !reflect.DeepEqual(h.menu.favorites, favorites) {
		t.Fatalf("unexpected tray menu update %+v", h.menu)
	}
}

func TestMinimizeOnCopy(t *testing.T) {
	cases := []struct {
		name  string
		flag  *bool
		noWin bool
		want  int
	}{
		{name: "flag true", flag: boolPtr(true), want: 1},
		{name: "flag false", flag: boolPtr(false), want: 0},
		{name: "flag missing", want: 0},
		{name: "no window", flag: boolPtr(true), noWin: true, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			win := h.windows.win
			if tc.flag != nil {
				if err := h.store.Save(storage.KeyMinimizeOnCopyToClipboard, *tc.flag); err != nil {
					t.Fatalf("save: %v", err)
				}
			}
			if tc.noWin {
				h.windows.win = nil
			}

			h.d.OnMessage(protocol.MinimizeOnCopy{})
			if win.minimized != tc.want {
				t.Fatalf("expected %d minimize calls, got %d", tc.want, win.minimized)
			}
		})
	}
}

func TestTrayCommands(t *testing.T) {
	h := newHarness()
	h.d.OnMessage(protocol.ShowTray{})
	h.d.OnMessage(protocol.HideToTray{})
	h.d.OnMessage(protocol.SetFocus{})
	h.d.OnMessage(protocol.RemoveTray{})

	want := []string{"show", "hide", "restore", "remove"}
	if !reflect.DeepEqual(h.tray.calls, want) {
		t.Fatalf("expected %v, got %v", want, h.tray.calls)
	}
	if h.windows.win.focused != 1 {
		t.Fatalf("expected one focus, got %d", h.windows.win.focused)
	}
}

func TestRemoveOpenAtLoginDoesNotFocus(t *testing.T) {
	h := newHarness()
	h.d.OnMessage(protocol.RemoveOpenAtLogin{})

	if h.login.removes != 1 {
		t.Fatalf("expected one remove, got %d", h.login.removes)
	}
	if h.windows.win.focused != 0 || len(h.tray.calls) != 0 {
		t.Fatalf("remove must not restore or focus (focus=%d tray=%v)", h.windows.win.focused, h.tray.calls)
	}
}

func TestLoginItemErrorsAreAbsorbed(t *testing.T) {
	h := newHarness()
	h.login.err = errors.New("permission denied")
	h.d.OnMessage(protocol.AddOpenAtLogin{})
	h.d.OnMessage(protocol.RemoveOpenAtLogin{})
	if h.login.adds != 1 || h.login.removes != 1 {
		t.Fatalf("unexpected login item calls %+v", h.login)
	}
}

func TestBrowserIntegration(t *testing.T) {
	h := newHarness()
	h.d.OnMessage(protocol.EnableBrowserIntegration{})
	h.d.OnMessage(protocol.DisableBrowserIntegration{})

	want := []string{"generate", "listen", "remove", "stop"}
	if !reflect.DeepEqual(h.browser.calls, want) {
		t.Fatalf("expected %v, got %v", want, h.browser.calls)
	}
}

func TestUnknownCommandChangesNothing(t *testing.T) {
	h := newHarness()
	h.d.OnMessage(protocol.ScheduleNextSync{})
	writes := h.store.Writes()
	armed := h.clock.Armed()

	h.d.OnMessage(protocol.Unknown{Command: "somethingNew"})

	if h.store.Writes() != writes {
		t.Fatalf("unknown command wrote to the store")
	}
	if h.clock.Armed() != armed || !h.d.Scheduler().Pending() {
		t.Fatalf("unknown command touched the timer")
	}
	if h.menu.updates != 0 || len(h.tray.calls) != 0 || h.login.adds+h.login.removes != 0 {
		t.Fatalf("unknown command reached a collaborator")
	}
	if len(h.sender.Commands()) != 0 {
		t.Fatalf("unknown command sent a notification")
	}
}

func TestNilCollaborators(t *testing.T) {
	d := NewDispatcher(Options{Clock: &manualClock{}})
	for _, cmd := range []protocol.Command{
		protocol.UpdateAppMenu{IsAuthenticated: true},
		protocol.MinimizeOnCopy{},
		protocol.ShowTray{},
		protocol.RemoveTray{},
		protocol.HideToTray{},
		protocol.AddOpenAtLogin{},
		protocol.RemoveOpenAtLogin{},
		protocol.SetFocus{},
		protocol.EnableBrowserIntegration{},
		protocol.DisableBrowserIntegration{},
	} {
		d.OnMessage(cmd)
	}
}

func TestHandleTrayAction(t *testing.T) {
	h := newHarness()

	h.d.HandleTrayAction(menu.Entry{Action: menu.Action{Kind: menu.ActionNotify, Notification: protocol.LockVault()}})
	if got := h.sender.Commands(); !reflect.DeepEqual(got, []string{protocol.CommandLockVault}) {
		t.Fatalf("unexpected outbound %v", got)
	}

	toggle := menu.Entry{Action: menu.Action{Kind: menu.ActionToggleWindow}}
	h.d.HandleTrayAction(toggle)
	h.d.HandleTrayAction(toggle)
	if !reflect.DeepEqual(h.tray.calls, []string{"hide", "restore"}) {
		t.Fatalf("unexpected toggle sequence %v", h.tray.calls)
	}

	h.d.HandleTrayAction(menu.Entry{Action: menu.Action{Kind: menu.ActionQuit}})
	if h.quits != 1 {
		t.Fatalf("expected quit, got %d", h.quits)
	}
}

func TestRunProcessesDeliveredCommands(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.d.Run(ctx) }()

	h.d.Deliver(protocol.AddOpenAtLogin{})
	adds := make(chan int, 1)
	h.d.Post(func() { adds <- h.login.adds })
	if got := <-adds; got != 1 {
		t.Fatalf("expected one add, got %d", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected run error: %v", err)
	}

	// Posting after shutdown must not block.
	h.d.Deliver(protocol.ShowTray{})
}

func boolPtr(v bool) *bool { return &v }
