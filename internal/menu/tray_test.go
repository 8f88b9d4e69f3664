package menu

import (
	"testing"

	"github.com/example/vaultdesk/internal/protocol"
)

type fakeWindow struct {
	hides, shows int
}

func (w *fakeWindow) Minimize() {}
func (w *fakeWindow) Focus()    {}
func (w *fakeWindow) Restore()  {}
func (w *fakeWindow) Hide()     { w.hides++ }
func (w *fakeWindow) Show()     { w.shows++ }

type windowSlot struct {
	win *fakeWindow
}

func (s *windowSlot) Window() Window {
	if s.win == nil {
		return nil
	}
	return s.win
}

func latest(t *testing.T, tray *Tray) UpdatePayload {
	t.Helper()
	select {
	case update := <-tray.updates:
		return update
	default:
		t.Fatalf("expected a published tray update")
		return UpdatePayload{}
	}
}

func TestTrayShowAndRemove(t *testing.T) {
	tray := NewTray(nil, nil, nil)
	if tray.ContextMenuTemplate() != nil {
		t.Fatalf("template should be absent before ShowTray")
	}

	tray.ShowTray()
	if tray.ContextMenuTemplate().Find(FavoritesID) == nil {
		t.Fatalf("default template missing favorites entry")
	}
	if update := latest(t, tray); !update.Visible {
		t.Fatalf("expected visible update")
	}

	tray.RemoveTray()
	if tray.Visible() {
		t.Fatalf("tray should be removed")
	}
	if update := latest(t, tray); update.Visible {
		t.Fatalf("expected hidden update")
	}
}

func TestTrayUpdateIgnoredBeforeConstruction(t *testing.T) {
	tray := NewTray(nil, nil, nil)
	tray.UpdateContextMenu(DefaultTemplate(English))
	if tray.ContextMenuTemplate() != nil {
		t.Fatalf("update should not construct the tray")
	}
}

func assertUnlockedWithFavorite(t *testing.T, tmpl Template) {
	t.Helper()
	if !tmpl.Find(LockNowID).Enabled {
		t.Fatalf("lockNow should be enabled")
	}
	favorites := tmpl.Find(FavoritesID)
	if !favorites.Enabled || len(favorites.Submenu) != 1 || favorites.Submenu[0].Label != "A" {
		t.Fatalf("unexpected favorites entry %+v", *favorites)
	}
}

func TestTemplateSurvivesRemoveTray(t *testing.T) {
	tray := NewTray(nil, nil, nil)
	reconciler := NewReconciler(tray, English)

	tray.ShowTray()
	tray.RemoveTray()
	latest(t, tray)

	reconciler.UpdateTrayMenu(true, false, []protocol.Favorite{{ID: "a", Name: "A"}})
	select {
	case <-tray.updates:
		t.Fatalf("removed tray should not redraw")
	default:
	}
	assertUnlockedWithFavorite(t, tray.ContextMenuTemplate())

	tray.ShowTray()
	update := latest(t, tray)
	if !update.Visible {
		t.Fatalf("expected visible update")
	}
	assertUnlockedWithFavorite(t, update.Template)
}

func TestTemplateSurvivesHideAndRestore(t *testing.T) {
	slot := &windowSlot{win: &fakeWindow{}}
	tray := NewTray(slot, nil, nil)
	reconciler := NewReconciler(tray, English)

	tray.HideToTray()
	reconciler.UpdateTrayMenu(true, false, []protocol.Favorite{{ID: "a", Name: "A"}})
	tray.RestoreFromTray()
	if tray.Visible() {
		t.Fatalf("tray shown only for hiding should be removed on restore")
	}

	tray.HideToTray()
	assertUnlockedWithFavorite(t, latest(t, tray).Template)
}

func TestTrayPublishCoalesces(t *testing.T) {
	tray := NewTray(nil, nil, nil)
	tray.ShowTray()
	tray.SetStatus(true, false)
	tray.UpdateContextMenu(Reconcile(tray.ContextMenuTemplate(), State{IsAuthenticated: true}, English))

	update := latest(t, tray)
	if !update.Template.Find(LockNowID).Enabled {
		t.Fatalf("expected the most recent template to win")
	}
	if update.Locked {
		t.Fatalf("expected unlocked icon state")
	}
	if update.Tooltip != "Vault unlocked" {
		t.Fatalf("unexpected tooltip %q", update.Tooltip)
	}
}

func TestHideToTrayThenRestore(t *testing.T) {
	slot := &windowSlot{win: &fakeWindow{}}
	tray := NewTray(slot, nil, nil)

	tray.HideToTray()
	if !tray.Visible() {
		t.Fatalf("hide to tray should show the tray")
	}
	if slot.win.hides != 1 {
		t.Fatalf("expected window hidden once, got %d", slot.win.hides)
	}

	tray.RestoreFromTray()
	if slot.win.shows != 1 {
		t.Fatalf("expected window shown once, got %d", slot.win.shows)
	}
	if tray.Visible() {
		t.Fatalf("tray shown only for hiding should be removed on restore")
	}
}

func TestRestoreKeepsExplicitTray(t *testing.T) {
	slot := &windowSlot{win: &fakeWindow{}}
	tray := NewTray(slot, nil, nil)

	tray.ShowTray()
	tray.HideToTray()
	tray.RestoreFromTray()
	if !tray.Visible() {
		t.Fatalf("explicitly shown tray should survive restore")
	}
}

func TestHideToTrayWithoutWindow(t *testing.T) {
	tray := NewTray(&windowSlot{}, nil, nil)
	tray.HideToTray()
	tray.RestoreFromTray()
	if tray.Visible() {
		t.Fatalf("tray should be removed after restore")
	}
}

func TestAppMenuForwardsStatus(t *testing.T) {
	tray := NewTray(nil, nil, nil)
	appMenu := NewAppMenu(tray)
	appMenu.UpdateApplicationMenuState(true, true)

	auth, locked := appMenu.State()
	if !auth || !locked {
		t.Fatalf("unexpected state auth=%t locked=%t", auth, locked)
	}
	if tray.tooltip != "Vault locked" {
		t.Fatalf("unexpected tooltip %q", tray.tooltip)
	}
}

func TestTemplateClonePreservesNilSubmenus(t *testing.T) {
	tmpl := Template{{ID: "a"}, {ID: "b", Submenu: []Entry{}}}
	clone := tmpl.Clone()
	if clone[0].Submenu != nil {
		t.Fatalf("nil submenu became non-nil")
	}
	if clone[1].Submenu == nil {
		t.Fatalf("empty submenu became nil")
	}
}

func TestDrawPadlockProducesPNG(t *testing.T) {
	data := drawPadlock(true)
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Fatalf("expected PNG data")
	}
}
