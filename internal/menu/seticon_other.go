//go:build (cgo || windows) && !darwin

package menu

import "github.com/getlantern/systray"

func setIcon(icon []byte) {
	systray.SetIcon(icon)
}
