package menu

import (
	"github.com/samber/lo"

	"github.com/example/vaultdesk/internal/logging"
	"github.com/example/vaultdesk/internal/protocol"
)

// State is the vault state the tray menu is derived from.
type State struct {
	IsAuthenticated bool
	IsLocked        bool
	Favorites       []protocol.Favorite
}

// Reconcile returns a copy of tmpl with the lockNow and favorites entries
// rebuilt from st. tmpl itself is not modified.
func Reconcile(tmpl Template, st State, labels Labels) Template {
	next := tmpl.Clone()
	unlocked := st.IsAuthenticated && !st.IsLocked

	if lockNow := next.Find(LockNowID); lockNow != nil {
		lockNow.Enabled = unlocked
	}

	if favorites := next.Find(FavoritesID); favorites != nil {
		favorites.Enabled = unlocked
		if unlocked {
			favorites.Submenu = favoriteEntries(st.Favorites, labels)
		} else {
			favorites.Submenu = nil
		}
	}

	return next
}

func favoriteEntries(favorites []protocol.Favorite, labels Labels) []Entry {
	return lo.Map(favorites, func(fav protocol.Favorite, _ int) Entry {
		prefix := FavoritesID + ":" + fav.ID
		return Entry{
			ID:      prefix,
			Label:   fav.Name,
			Enabled: true,
			Submenu: []Entry{
				{
					ID:      prefix + ":username",
					Label:   labels.T("copyUsername"),
					Enabled: true,
					Action:  Action{Kind: ActionNotify, Notification: protocol.CopyPasswordWithID(fav.ID, true)},
				},
				{
					ID:      prefix + ":password",
					Label:   labels.T("copyPassword"),
					Enabled: true,
					Action:  Action{Kind: ActionNotify, Notification: protocol.CopyPasswordWithID(fav.ID, false)},
				},
			},
		}
	})
}

// TemplateHost owns the live tray template.
type TemplateHost interface {
	// ContextMenuTemplate returns nil until the tray is first constructed.
	ContextMenuTemplate() Template
	// UpdateContextMenu replaces the template and redraws the tray.
	UpdateContextMenu(Template)
}

// Reconciler applies vault state to the host's tray template.
type Reconciler struct {
	host   TemplateHost
	labels Labels
}

// NewReconciler binds a Reconciler to host. A nil labels uses English.
func NewReconciler(host TemplateHost, labels Labels) *Reconciler {
	if labels == nil {
		labels = English
	}
	return &Reconciler{host: host, labels: labels}
}

// UpdateTrayMenu rebuilds the tray menu. It does nothing when the tray has no
// template yet.
func (r *Reconciler) UpdateTrayMenu(isAuthenticated, isLocked bool, favorites []protocol.Favorite) {
	if r.host == nil {
		return
	}
	current := r.host.ContextMenuTemplate()
	if current == nil {
		logging.Debugf("tray template absent; skipping menu reconcile")
		return
	}

	next := Reconcile(current, State{
		IsAuthenticated: isAuthenticated,
		IsLocked:        isLocked,
		Favorites:       favorites,
	}, r.labels)
	logging.Debugf("reconciled tray menu (authenticated=%t locked=%t favorites=%d)", isAuthenticated, isLocked, len(favorites))
	r.host.UpdateContextMenu(next)
}
