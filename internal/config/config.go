// Package config loads the host configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "vaultdesk"
	configFileName = "config.yaml"
)

// Config is the persisted host configuration.
type Config struct {
	// Endpoint is the loopback address of the presentation channel.
	Endpoint        string          `yaml:"endpoint"`
	Storage         StorageConfig   `yaml:"storage"`
	Log             LogConfig       `yaml:"log"`
	NativeMessaging NativeMessaging `yaml:"nativeMessaging"`
	Autostart       Autostart       `yaml:"autostart"`
}

// StorageConfig selects the settings store backend.
type StorageConfig struct {
	// Backend is one of file, badger or memory.
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// NativeMessaging configures the browser integration bridge.
type NativeMessaging struct {
	Endpoint       string   `yaml:"endpoint"`
	HostName       string   `yaml:"hostName"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// Autostart describes the login item registration.
type Autostart struct {
	Name string `yaml:"name"`
	// Exec defaults to the running executable.
	Exec string `yaml:"exec,omitempty"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Endpoint: "127.0.0.1:47864",
		Storage:  StorageConfig{Backend: "file"},
		Log:      LogConfig{Level: "info"},
		NativeMessaging: NativeMessaging{
			Endpoint: "127.0.0.1:47865",
			HostName: "com.example.vaultdesk",
		},
		Autostart: Autostart{Name: "Vaultdesk"},
	}
}

// Path returns the resolved configuration file path.
func Path() (string, error) {
	if custom := strings.TrimSpace(os.Getenv("VAULTDESK_CONFIG_PATH")); custom != "" {
		return custom, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads the configuration at path, or at Path() when path is empty. A
// missing file is replaced by the defaults, which are saved.
func Load(path string) (*Config, error) {
	if path == "" {
		resolved, err := Path()
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	cfg := Default()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tempFile, path)
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = "file"
	case "file", "badger", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint must not be empty")
	}
	return nil
}
