// Package security resolves the host secret and the channel token derived
// from it.
package security

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"

	"github.com/example/vaultdesk/internal/logging"
)

const (
	keyringService = "vaultdesk"
	keyringUser    = "host-secret"
)

// CompiledSecret holds a secret embedded at build time via -ldflags. When
// empty, VAULTDESK_SECRET and then the OS keyring are consulted.
var CompiledSecret string

// ErrSecretUnavailable is returned when no secret is configured and the OS
// keyring cannot provide one.
var ErrSecretUnavailable = errors.New("security: host secret unavailable; set VAULTDESK_SECRET")

// ResolveSecret returns the host secret. A secret generated on first run is
// kept in the OS keyring so later runs derive the same channel token and can
// decrypt the settings store.
func ResolveSecret() (string, error) {
	if compiled := strings.TrimSpace(CompiledSecret); compiled != "" {
		return compiled, nil
	}
	if env := strings.TrimSpace(os.Getenv("VAULTDESK_SECRET")); env != "" {
		return env, nil
	}

	secret, err := keyring.Get(keyringService, keyringUser)
	if err == nil && strings.TrimSpace(secret) != "" {
		return secret, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrSecretUnavailable, err)
	}

	secret = uuid.NewString()
	if err := keyring.Set(keyringService, keyringUser, secret); err != nil {
		return "", fmt.Errorf("%w: store generated secret: %v", ErrSecretUnavailable, err)
	}
	logging.Infof("security: generated host secret %s", logging.MaskIdentifier(secret))
	return secret, nil
}

// ForgetSecret removes the keyring-held secret. A missing entry is not an error.
func ForgetSecret() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete host secret: %w", err)
	}
	return nil
}
