// Package protocol defines the messages exchanged between the presentation
// layer and the host process.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound command names.
const (
	CommandScheduleNextSync          = "scheduleNextSync"
	CommandUpdateAppMenu             = "updateAppMenu"
	CommandMinimizeOnCopy            = "minimizeOnCopy"
	CommandShowTray                  = "showTray"
	CommandRemoveTray                = "removeTray"
	CommandHideToTray                = "hideToTray"
	CommandAddOpenAtLogin            = "addOpenAtLogin"
	CommandRemoveOpenAtLogin         = "removeOpenAtLogin"
	CommandSetFocus                  = "setFocus"
	CommandEnableBrowserIntegration  = "enableBrowserIntegration"
	CommandDisableBrowserIntegration = "disableBrowserIntegration"
)

// ErrMissingCommand is returned by Decode for frames without a command name.
var ErrMissingCommand = errors.New("protocol: missing command")

// Favorite is a credential surfaced in the tray for quick copy actions.
type Favorite struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Command is one inbound message. The set of implementations is closed.
type Command interface {
	Name() string
	command()
}

type (
	ScheduleNextSync struct{}
	MinimizeOnCopy   struct{}
	ShowTray         struct{}
	RemoveTray       struct{}
	HideToTray       struct{}
	AddOpenAtLogin   struct{}
	// RemoveOpenAtLogin only unregisters the login item; it does not focus
	// the window.
	RemoveOpenAtLogin         struct{}
	SetFocus                  struct{}
	EnableBrowserIntegration  struct{}
	DisableBrowserIntegration struct{}
)

// UpdateAppMenu carries the vault state the menus are derived from.
type UpdateAppMenu struct {
	IsAuthenticated bool
	IsLocked        bool
	Favorites       []Favorite
}

// Unknown is any command this host does not recognise. It is never an error.
type Unknown struct {
	Command string
}

func (ScheduleNextSync) Name() string          { return CommandScheduleNextSync }
func (UpdateAppMenu) Name() string             { return CommandUpdateAppMenu }
func (MinimizeOnCopy) Name() string            { return CommandMinimizeOnCopy }
func (ShowTray) Name() string                  { return CommandShowTray }
func (RemoveTray) Name() string                { return CommandRemoveTray }
func (HideToTray) Name() string                { return CommandHideToTray }
func (AddOpenAtLogin) Name() string            { return CommandAddOpenAtLogin }
func (RemoveOpenAtLogin) Name() string         { return CommandRemoveOpenAtLogin }
func (SetFocus) Name() string                  { return CommandSetFocus }
func (EnableBrowserIntegration) Name() string  { return CommandEnableBrowserIntegration }
func (DisableBrowserIntegration) Name() string { return CommandDisableBrowserIntegration }
func (u Unknown) Name() string                 { return u.Command }

func (ScheduleNextSync) command()          {}
func (UpdateAppMenu) command()             {}
func (MinimizeOnCopy) command()            {}
func (ShowTray) command()                  {}
func (RemoveTray) command()                {}
func (HideToTray) command()                {}
func (AddOpenAtLogin) command()            {}
func (RemoveOpenAtLogin) command()         {}
func (SetFocus) command()                  {}
func (EnableBrowserIntegration) command()  {}
func (DisableBrowserIntegration) command() {}
func (Unknown) command()                   {}

// frame is the wire shape of an inbound message.
type frame struct {
	Command         *string    `json:"command"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	IsLocked        bool       `json:"isLocked"`
	Favorites       []Favorite `json:"favorites"`
}

// Decode parses one JSON frame into its Command variant.
func Decode(data []byte) (Command, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if f.Command == nil || strings.TrimSpace(*f.Command) == "" {
		return nil, ErrMissingCommand
	}

	switch name := *f.Command; name {
	case CommandScheduleNextSync:
		return ScheduleNextSync{}, nil
	case CommandUpdateAppMenu:
		return UpdateAppMenu{
			IsAuthenticated: f.IsAuthenticated,
			IsLocked:        f.IsLocked,
			Favorites:       f.Favorites,
		}, nil
	case CommandMinimizeOnCopy:
		return MinimizeOnCopy{}, nil
	case CommandShowTray:
		return ShowTray{}, nil
	case CommandRemoveTray:
		return RemoveTray{}, nil
	case CommandHideToTray:
		return HideToTray{}, nil
	case CommandAddOpenAtLogin:
		return AddOpenAtLogin{}, nil
	case CommandRemoveOpenAtLogin:
		return RemoveOpenAtLogin{}, nil
	case CommandSetFocus:
		return SetFocus{}, nil
	case CommandEnableBrowserIntegration:
		return EnableBrowserIntegration{}, nil
	case CommandDisableBrowserIntegration:
		return DisableBrowserIntegration{}, nil
	default:
		return Unknown{Command: name}, nil
	}
}
