package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hipotures/todoit/internal/storage"
)

// Sentinel errors re-exported from the storage package so callers of
// this backend can match without importing both
var (
	ErrNotFound = storage.ErrNotFound
	ErrConflict = storage.ErrConflict
	ErrCycle    = storage.ErrCycle
)

// wrapDBError wraps a database error with operation context
// It converts sql.ErrNoRows to ErrNotFound and unique constraint
// violations to ErrConflict for consistent error handling
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapDBErrorf wraps a database error with formatted operation context
// It applies the same sentinel conversions as wrapDBError
func wrapDBErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return wrapDBError(fmt.Sprintf(format, args...), err)
}

// isUniqueConstraintError detects UNIQUE violations from the driver.
// The ncruces driver surfaces them as "constraint failed: UNIQUE ...".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is or wraps ErrConflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsCycle checks if an error is or wraps ErrCycle
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}
