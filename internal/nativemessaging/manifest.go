// Package nativemessaging bridges browser extensions to the host through the
// browsers' native messaging mechanism.
package nativemessaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/example/vaultdesk/internal/logging"
)

// Manifest is the native messaging host manifest read by browsers.
type Manifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
}

type browserFamily int

const (
	familyChromium browserFamily = iota
	familyFirefox
)

// target is one browser's manifest location.
type target struct {
	browser string
	family  browserFamily
	dir     string
	// registryKey is set on windows, where browsers locate manifests through
	// the registry instead of a well-known directory.
	registryKey string
}

func (t target) file(hostName string) string {
	return filepath.Join(t.dir, hostName+".json")
}

func targets(goos, home, configDir, hostName string) []target {
	switch goos {
	case "darwin":
		support := filepath.Join(home, "Library", "Application Support")
		return []target{
			{browser: "chrome", family: familyChromium, dir: filepath.Join(support, "Google", "Chrome", "NativeMessagingHosts")},
			{browser: "chromium", family: familyChromium, dir: filepath.Join(support, "Chromium", "NativeMessagingHosts")},
			{browser: "firefox", family: familyFirefox, dir: filepath.Join(support, "Mozilla", "NativeMessagingHosts")},
		}
	case "windows":
		dir := filepath.Join(configDir, "vaultdesk", "native-messaging")
		return []target{
			{browser: "chrome", family: familyChromium, dir: filepath.Join(dir, "chrome"), registryKey: `Software\Google\Chrome\NativeMessagingHosts\` + hostName},
			{browser: "edge", family: familyChromium, dir: filepath.Join(dir, "chrome"), registryKey: `Software\Microsoft\Edge\NativeMessagingHosts\` + hostName},
			{browser: "firefox", family: familyFirefox, dir: filepath.Join(dir, "firefox"), registryKey: `Software\Mozilla\NativeMessagingHosts\` + hostName},
		}
	default:
		config := filepath.Join(home, ".config")
		return []target{
			{browser: "chrome", family: familyChromium, dir: filepath.Join(config, "google-chrome", "NativeMessagingHosts")},
			{browser: "chromium", family: familyChromium, dir: filepath.Join(config, "chromium", "NativeMessagingHosts")},
			{browser: "firefox", family: familyFirefox, dir: filepath.Join(home, ".mozilla", "native-messaging-hosts")},
		}
	}
}

func (b *Bridge) manifestFor(t target) Manifest {
	m := Manifest{
		Name:        b.opts.HostName,
		Description: b.opts.Description,
		Path:        b.opts.ProxyPath,
		Type:        "stdio",
	}
	if t.family == familyFirefox {
		m.AllowedExtensions = lo.Filter(b.opts.AllowedOrigins, func(origin string, _ int) bool {
			return !strings.Contains(origin, "://")
		})
	} else {
		m.AllowedOrigins = lo.Filter(b.opts.AllowedOrigins, func(origin string, _ int) bool {
			return strings.HasPrefix(origin, "chrome-extension://")
		})
	}
	return m
}

// GenerateManifests writes a manifest for every supported browser.
func (b *Bridge) GenerateManifests() error {
	var errs []error
	for _, t := range b.targets() {
		data, err := json.MarshalIndent(b.manifestFor(t), "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s manifest: %w", t.browser, err)
		}
		if err := os.MkdirAll(t.dir, 0o755); err != nil {
			errs = append(errs, fmt.Errorf("create %s: %w", t.dir, err))
			continue
		}
		path := t.file(b.opts.HostName)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		if t.registryKey != "" {
			if err := registerManifest(t.registryKey, path); err != nil {
				errs = append(errs, fmt.Errorf("register %s manifest: %w", t.browser, err))
				continue
			}
		}
		logging.Debugf("nativemessaging: wrote %s manifest %s", t.browser, path)
	}
	return errors.Join(errs...)
}

// RemoveManifests deletes the manifests written by GenerateManifests. Missing
// files are ignored.
func (b *Bridge) RemoveManifests() error {
	var errs []error
	for _, t := range b.targets() {
		path := t.file(b.opts.HostName)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
		if t.registryKey != "" {
			if err := unregisterManifest(t.registryKey); err != nil {
				errs = append(errs, fmt.Errorf("unregister %s manifest: %w", t.browser, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ManifestPaths lists the manifest files this bridge manages.
func (b *Bridge) ManifestPaths() []string {
	return lo.Uniq(lo.Map(b.targets(), func(t target, _ int) string {
		return t.file(b.opts.HostName)
	}))
}

func (b *Bridge) targets() []target {
	return targets(b.opts.GOOS, b.opts.Home, b.opts.ConfigDir, b.opts.HostName)
}
