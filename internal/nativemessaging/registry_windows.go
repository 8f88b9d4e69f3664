//go:build windows

package nativemessaging

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

func registerManifest(keyPath, manifest string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, keyPath, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()
	return key.SetStringValue("", manifest)
}

func unregisterManifest(keyPath string) error {
	if err := registry.DeleteKey(registry.CURRENT_USER, keyPath); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}
