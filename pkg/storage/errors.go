package storage

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueViolation detects a primary-key collision across drivers. GORM
// translates it when the dialector supports error translation; SQLite and
// PostgreSQL otherwise surface driver-specific messages.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
