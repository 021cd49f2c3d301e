package slv

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrExportFailed is returned when the vault export command exits non-zero.
var ErrExportFailed = errors.New("failed to get secrets")

// RedactedError wraps an error with a message that has credentials and home
// paths removed, while keeping the error chain for errors.Is/errors.As.
type RedactedError struct {
	message string
	wrapped error
}

// Error returns the redacted message.
func (e *RedactedError) Error() string {
	return e.message
}

// Unwrap returns the wrapped error.
func (e *RedactedError) Unwrap() error {
	return e.wrapped
}

// newRedactedError builds a RedactedError from err, scrubbing detail and any
// of the given secrets out of the message.
func newRedactedError(err error, detail string, secrets ...string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if detail = strings.TrimSpace(detail); detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, redactSensitiveInfo(detail, secrets...))
	}
	return &RedactedError{message: msg, wrapped: err}
}

var (
	linuxHomeRe = regexp.MustCompile(`/home/[^/\s]+`)
	macHomeRe   = regexp.MustCompile(`/Users/[^/\s]+`)
	eskRe       = regexp.MustCompile(`SLV_ESK_[A-Za-z0-9_-]+`)
)

// redactSensitiveInfo removes secrets, key material and user home paths
// from msg and caps its length.
func redactSensitiveInfo(msg string, secrets ...string) string {
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, "***")
		}
	}
	msg = eskRe.ReplaceAllString(msg, "SLV_ESK_***")

	if home, err := os.UserHomeDir(); err == nil && home != "" && home != "/" {
		msg = strings.ReplaceAll(msg, home, "$HOME")
	}
	msg = linuxHomeRe.ReplaceAllString(msg, "/home/<user>")
	msg = macHomeRe.ReplaceAllString(msg, "/Users/<user>")

	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}
