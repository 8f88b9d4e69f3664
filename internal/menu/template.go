package menu

import "github.com/example/vaultdesk/internal/protocol"

// Entry IDs the reconciler manages. Other IDs are passed through untouched.
const (
	ShowHideID  = "showHide"
	LockNowID   = "lockNow"
	FavoritesID = "favorites"
	ExitID      = "exit"
)

// Kind distinguishes actionable entries from separators.
type Kind int

const (
	KindNormal Kind = iota
	KindSeparator
)

// ActionKind selects what activating an entry does.
type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionNotify sends Action.Notification to the presentation layer.
	ActionNotify
	ActionToggleWindow
	ActionQuit
)

// Action is the effect bound to an entry.
type Action struct {
	Kind         ActionKind
	Notification protocol.Notification
}

// Entry is one node of the tray menu tree.
//
// A nil Submenu means the entry has no submenu; a non-nil empty Submenu is an
// empty submenu. Host widgets may render the two differently.
type Entry struct {
	ID      string
	Label   string
	Tooltip string
	Kind    Kind
	Enabled bool
	Submenu []Entry
	Action  Action
}

// Template is the ordered top level of the tray menu. Templates are never
// mutated once handed to a Tray; rebuilds produce a new Template.
type Template []Entry

// Find returns the top-level entry with id, or nil.
func (t Template) Find(id string) *Entry {
	for i := range t {
		if t[i].ID == id {
			return &t[i]
		}
	}
	return nil
}

// Clone deep-copies the template, preserving nil versus empty submenus.
func (t Template) Clone() Template {
	if t == nil {
		return nil
	}
	return Template(cloneEntries(t))
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Submenu = cloneEntries(e.Submenu)
		out[i] = e
	}
	return out
}

// DefaultTemplate returns the tray menu shown before any vault state is known.
func DefaultTemplate(labels Labels) Template {
	return Template{
		{
			ID:      ShowHideID,
			Label:   labels.T("showHide"),
			Enabled: true,
			Action:  Action{Kind: ActionToggleWindow},
		},
		{ID: "separator-1", Kind: KindSeparator},
		{
			ID:     LockNowID,
			Label:  labels.T("lockNow"),
			Action: Action{Kind: ActionNotify, Notification: protocol.LockVault()},
		},
		{
			ID:    FavoritesID,
			Label: labels.T("favorites"),
		},
		{ID: "separator-2", Kind: KindSeparator},
		{
			ID:      ExitID,
			Label:   labels.T("exit"),
			Enabled: true,
			Action:  Action{Kind: ActionQuit},
		},
	}
}
