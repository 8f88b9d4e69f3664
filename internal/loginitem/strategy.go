// Package loginitem registers the host to start when the user logs in.
package loginitem

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupported is returned when no strategy exists for the platform.
var ErrUnsupported = errors.New("loginitem: unsupported platform")

// Strategy toggles one platform's start-at-login registration.
type Strategy interface {
	Name() string
	Enabled() (bool, error)
	Enable() error
	Disable() error
}

// Options describes the application being registered.
type Options struct {
	// Name is the display name, also used for the descriptor file name.
	Name string
	// ID is the reverse-DNS identifier used by launch agents.
	ID      string
	Comment string
	Exec    string
	Version string
	// Home defaults to the current user's home directory.
	Home string
	// FS defaults to the real filesystem.
	FS FS
}

func (o Options) withDefaults() (Options, error) {
	if o.Name == "" {
		o.Name = "vaultdesk"
	}
	if o.ID == "" {
		o.ID = "com.example." + strings.ToLower(o.Name)
	}
	if o.Comment == "" {
		o.Comment = o.Name + " startup script"
	}
	if o.Exec == "" {
		exe, err := os.Executable()
		if err != nil {
			return o, fmt.Errorf("resolve executable: %w", err)
		}
		o.Exec = exe
	}
	if o.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return o, fmt.Errorf("resolve home directory: %w", err)
		}
		o.Home = home
	}
	if o.FS == nil {
		o.FS = OSFS{}
	}
	return o, nil
}

// ForPlatform returns the strategy for goos. It is called once at startup.
func ForPlatform(goos string, opts Options) (Strategy, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return NewDesktopEntry(opts), nil
	case "darwin":
		return NewLaunchAgent(opts), nil
	case "windows":
		return newRegistryStrategy(opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
}
