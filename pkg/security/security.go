// Package security provides validation, sanitization, and limits for queuectl.
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/queuectl/queuectl/pkg/core"
)

// Limits applied before anything touches the store.
const (
	// MaxJobIDLength is the maximum length for job identifiers.
	MaxJobIDLength = 255

	// MaxErrorMessageLength is the maximum length for stored error messages.
	MaxErrorMessageLength = 4096

	// MaxStderrSnippet is how much captured stderr is folded into a
	// failure message.
	MaxStderrSnippet = 200

	// MaxListLimit is the hard cap on list query sizes.
	MaxListLimit = 1000
)

// validJobID matches alphanumeric, hyphens, underscores, and dots.
var validJobID = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-\.]*$`)

// ValidateJobID validates a client-supplied job identifier.
func ValidateJobID(id string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	if len(id) > MaxJobIDLength {
		return core.ErrIDTooLong
	}
	if !validJobID.MatchString(id) {
		return core.ErrInvalidID
	}
	return nil
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	// Strip null bytes and control characters (except whitespace)
	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}

// TruncateStderr trims a captured stderr stream to the snippet size used in
// failure messages.
func TruncateStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > MaxStderrSnippet {
		return s[:MaxStderrSnippet]
	}
	return s
}

// ClampLimit ensures list query limits are within bounds. Non-positive
// values fall back to the provided default.
func ClampLimit(n, def int) int {
	if n <= 0 {
		return def
	}
	if n > MaxListLimit {
		return MaxListLimit
	}
	return n
}
