//go:build !cgo && !windows

package menu

import (
	"context"

	"github.com/example/vaultdesk/internal/logging"
)

// headlessController keeps the tray model consistent on builds without a
// native tray; it only logs what would have been drawn.
type headlessController struct{}

func newTrayController(func(Entry)) trayController {
	return headlessController{}
}

func (headlessController) Run(ctx context.Context, updates <-chan UpdatePayload) error {
	logging.Warnf("system tray is unavailable without cgo support; running headless")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			logging.Debugf("headless tray update: visible=%t entries=%d", update.Visible, len(update.Template))
		}
	}
}
