package loginitem

import (
	"errors"
	"fmt"

	"github.com/example/vaultdesk/internal/logging"
	"github.com/example/vaultdesk/internal/storage"
)

// Manager keeps the openAtLogin flag in the store consistent with the real
// registration.
type Manager struct {
	strategy Strategy
	store    storage.Store
}

// NewManager binds strategy to store.
func NewManager(strategy Strategy, store storage.Store) *Manager {
	return &Manager{strategy: strategy, store: store}
}

// Init reads the real registration and saves it.
func (m *Manager) Init() error {
	return m.sync()
}

// Add registers the application and saves the resulting state, even when
// registering failed part way.
func (m *Manager) Add() error {
	if err := m.strategy.Enable(); err != nil {
		return errors.Join(fmt.Errorf("%s enable: %w", m.strategy.Name(), err), m.sync())
	}
	return m.sync()
}

// Remove unregisters the application and saves the resulting state, even when
// unregistering failed part way.
func (m *Manager) Remove() error {
	if err := m.strategy.Disable(); err != nil {
		return errors.Join(fmt.Errorf("%s disable: %w", m.strategy.Name(), err), m.sync())
	}
	return m.sync()
}

// Enabled reports the real registration state.
func (m *Manager) Enabled() (bool, error) {
	return m.strategy.Enabled()
}

func (m *Manager) sync() error {
	enabled, err := m.strategy.Enabled()
	if err != nil {
		return fmt.Errorf("%s state: %w", m.strategy.Name(), err)
	}
	if err := m.store.Save(storage.KeyOpenAtLogin, enabled); err != nil {
		return fmt.Errorf("save %s: %w", storage.KeyOpenAtLogin, err)
	}
	logging.Debugf("login item %s enabled=%t", m.strategy.Name(), enabled)
	return nil
}
