//go:build !windows

package nativemessaging

func registerManifest(string, string) error { return nil }

func unregisterManifest(string) error { return nil }
