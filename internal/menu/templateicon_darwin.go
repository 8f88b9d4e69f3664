//go:build darwin && cgo

package menu

import "github.com/getlantern/systray"

func setIcon(icon []byte) {
	systray.SetTemplateIcon(icon, icon)
}
