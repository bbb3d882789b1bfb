package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New returns a singleton zap.Logger configured for structured logging.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env != "production" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		lg, err = cfg.Build()
	})

	return lg, err
}

// Secret-redaction helpers. JWTs, ephemeral keys, and proof material must
// never reach the log stream; failure logging at the core boundary carries
// only the typed error plus the user key.

// MaskToken masks bearer material, keeping just enough of the head to
// correlate log lines. Example: eyJhbGciOi... -> eyJhbG***
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "***"
}

// MaskAddress shortens a chain address for log fields.
// Example: 0x3fa1...9c2e
func MaskAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// SanitizeURL strips query parameters from a URL before logging, since login
// URLs embed nonces and state.
func SanitizeURL(raw string) string {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		return raw[:idx] + "?..."
	}
	return raw
}
