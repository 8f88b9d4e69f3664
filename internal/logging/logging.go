package logging

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

var (
	debugEnabled atomic.Bool

	mu     sync.RWMutex
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(w)
	mu.Unlock()
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies
// it globally. Unknown names fall back to info.
func SetLevel(name string) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if level <= zerolog.DebugLevel {
		EnableDebug()
		return
	}
	debugEnabled.Store(false)
	zerolog.SetGlobalLevel(level)
}

// Logger returns the process logger for structured fields.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// EnableDebug turns on verbose debug logging for the application lifecycle.
func EnableDebug() {
	debugEnabled.Store(true)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	Logger().Debug().Msg("debug logging enabled")
}

// DebugEnabled reports whether debug logging is active.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf emits a formatted debug log message when debugging is enabled.
func Debugf(format string, args ...interface{}) {
	if !DebugEnabled() {
		return
	}
	Logger().Debug().Msgf(format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	Logger().Info().Msgf(format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) {
	Logger().Warn().Msgf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	Logger().Error().Msgf(format, args...)
}

// LogHTTPRequest emits detailed information about an inbound channel upgrade
// request when debugging is enabled. Sensitive headers such as bearer tokens
// are masked prior to logging.
func LogHTTPRequest(req *http.Request, body []byte) {
	if !DebugEnabled() || req == nil {
		return
	}

	target := sanitizeURL(req.URL)
	if target == "" {
		target = "<unknown>"
	}

	l := Logger()
	l.Debug().Str("method", req.Method).Str("remote", req.RemoteAddr).Msgf("HTTP request %s", target)

	if len(req.Header) > 0 {
		l.Debug().Msgf("--> request headers: %s", formatHeaders(req.Header))
	}

	if len(body) > 0 {
		l.Debug().Msgf("--> request payload %s", describePayload(body))
	}
}

func formatHeaders(headers http.Header) string {
	type headerEntry struct {
		name   string
		values []string
	}

	entries := make([]headerEntry, 0, len(headers))
	for name, values := range headers {
		sanitized := make([]string, len(values))
		for idx, value := range values {
			sanitized[idx] = sanitizeSensitiveValue(name, value)
		}
		entries = append(entries, headerEntry{name: name, values: sanitized})
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})

	var b strings.Builder
	for idx, entry := range entries {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(entry.name)
		b.WriteString(": [")
		b.WriteString(strings.Join(entry.values, ", "))
		b.WriteString("]")
	}

	return b.String()
}

func describePayload(body []byte) string {
	if utf8.Valid(body) {
		return fmt.Sprintf("(utf-8, %d bytes): %s", len(body), string(body))
	}

	encoded := base64.StdEncoding.EncodeToString(body)
	return fmt.Sprintf("(base64, %d bytes): %s", len(body), encoded)
}

func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clone := *u

	if clone.RawQuery != "" {
		query := clone.Query()
		sanitized := false
		for key, values := range query {
			if isSensitiveKey(key) {
				sanitized = true
				for idx, value := range values {
					query[key][idx] = sanitizeSensitiveValue(key, value)
				}
			}
		}
		if sanitized {
			clone.RawQuery = query.Encode()
		}
	}

	if clone.User != nil {
		username := clone.User.Username()
		password, hasPassword := clone.User.Password()
		if hasPassword {
			clone.User = url.UserPassword(username, MaskIdentifier(password))
		}
	}

	return clone.String()
}

func isSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "authorization"),
		strings.Contains(lower, "secret"),
		strings.Contains(lower, "password"),
		strings.Contains(lower, "token"):
		return true
	default:
		return false
	}
}

func sanitizeSensitiveValue(name, value string) string {
	if value == "" {
		return value
	}
	if isSensitiveKey(name) {
		return MaskIdentifier(value)
	}
	return value
}

// MaskIdentifier obscures sensitive identifiers leaving only the last four characters visible.
func MaskIdentifier(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(trimmed)-4) + trimmed[len(trimmed)-4:]
}
