//go:build cgo || windows

package menu

import (
	"context"
	"sync"

	"github.com/getlantern/systray"

	"github.com/example/vaultdesk/internal/logging"
)

const separatorLabel = "────────"

type systrayController struct {
	onClick func(Entry)

	mu      sync.Mutex
	entries []trayEntry
}

type trayEntry struct {
	item   *systray.MenuItem
	cancel context.CancelFunc
}

func newTrayController(onClick func(Entry)) trayController {
	return &systrayController{onClick: onClick}
}

func (c *systrayController) Run(ctx context.Context, updates <-chan UpdatePayload) error {
	done := make(chan struct{})

	go systray.Run(func() {
		setIcon(trayIcon(true))
		systray.SetTooltip("vaultdesk")
		go c.listen(ctx, updates)
	}, func() {
		c.shutdown()
		close(done)
	})

	select {
	case <-ctx.Done():
		systray.Quit()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *systrayController) listen(ctx context.Context, updates <-chan UpdatePayload) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				systray.Quit()
				return
			}
			c.render(ctx, update)
		}
	}
}

func (c *systrayController) render(ctx context.Context, update UpdatePayload) {
	c.mu.Lock()
	old := c.entries
	c.entries = nil
	c.mu.Unlock()

	for _, entry := range old {
		entry.cancel()
		if entry.item != nil {
			entry.item.Hide()
		}
	}

	if !update.Visible {
		systray.SetTooltip("")
		logging.Debugf("tray menu cleared")
		return
	}

	setIcon(trayIcon(update.Locked))
	if update.Tooltip != "" {
		systray.SetTooltip(update.Tooltip)
	}

	entries := c.renderEntries(ctx, update.Template, nil)

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	logging.Debugf("rendered tray menu with %d widgets", len(entries))
}

func (c *systrayController) renderEntries(ctx context.Context, entries []Entry, parent *systray.MenuItem) []trayEntry {
	out := make([]trayEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, c.addMenuItem(ctx, entry, parent)...)
	}
	return out
}

func (c *systrayController) addMenuItem(ctx context.Context, entry Entry, parent *systray.MenuItem) []trayEntry {
	if entry.Kind == KindSeparator {
		// Separators are rendered as disabled items so they can be hidden on
		// the next render.
		mi := makeMenuItem(parent, separatorLabel, "")
		mi.Disable()
		return []trayEntry{{item: mi, cancel: func() {}}}
	}

	mi := makeMenuItem(parent, entry.Label, entry.Tooltip)
	if !entry.Enabled {
		mi.Disable()
	}

	ctxItem, cancel := context.WithCancel(ctx)
	go c.watchClicks(ctxItem, mi.ClickedCh, entry)

	rendered := []trayEntry{{item: mi, cancel: cancel}}
	if entry.Submenu != nil {
		rendered = append(rendered, c.renderEntries(ctx, entry.Submenu, mi)...)
	}
	return rendered
}

func (c *systrayController) watchClicks(ctx context.Context, ch <-chan struct{}, entry Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if entry.Action.Kind == ActionNone || c.onClick == nil {
				continue
			}
			c.onClick(entry)
		}
	}
}

func makeMenuItem(parent *systray.MenuItem, label, tooltip string) *systray.MenuItem {
	if parent == nil {
		return systray.AddMenuItem(label, tooltip)
	}
	return parent.AddSubMenuItem(label, tooltip)
}

func (c *systrayController) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.entries {
		entry.cancel()
	}
	c.entries = nil
}
