//go:build windows

package loginitem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryStrategy registers the application under the current user's Run key.
type RegistryStrategy struct {
	value string
	exec  string
}

func newRegistryStrategy(opts Options) (Strategy, error) {
	return &RegistryStrategy{value: opts.Name, exec: opts.Exec}, nil
}

func (s *RegistryStrategy) Name() string { return "registry" }

func (s *RegistryStrategy) Enabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if _, _, err := key.GetStringValue(s.value); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read run value %s: %w", s.value, err)
	}
	return true, nil
}

func (s *RegistryStrategy) Enable() error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(s.value, `"`+s.exec+`"`); err != nil {
		return fmt.Errorf("write run value %s: %w", s.value, err)
	}
	return nil
}

func (s *RegistryStrategy) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(s.value); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value %s: %w", s.value, err)
	}
	return nil
}
