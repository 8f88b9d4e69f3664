package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

// channelPurpose scopes derived tokens so the host secret can key other
// material without collisions.
const channelPurpose = "vaultdesk/presentation-channel/v1"

// ChannelToken returns the bearer token presentation clients must present.
// VAULTDESK_CHANNEL_TOKEN overrides derivation unless a secret was compiled in.
func ChannelToken(secret string) string {
	if compiled := strings.TrimSpace(CompiledSecret); compiled != "" {
		return DeriveChannelToken(compiled)
	}
	if token, ok := os.LookupEnv("VAULTDESK_CHANNEL_TOKEN"); ok && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token)
	}
	return DeriveChannelToken(secret)
}

// DeriveChannelToken returns HMAC-SHA256(secret, channelPurpose) as hex, or ""
// for a blank secret.
func DeriveChannelToken(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(channelPurpose))
	return hex.EncodeToString(mac.Sum(nil))
}
