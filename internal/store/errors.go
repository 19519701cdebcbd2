package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an update or delete matched zero rows.
	ErrNotFound = errors.New("not found")
	// ErrOwnerRequired is returned when a file is created without an owner.
	ErrOwnerRequired = errors.New("owner is required")
	// ErrConflict wraps unique constraint violations.
	ErrConflict = errors.New("conflict")
	// ErrForeignKey wraps foreign key violations (unknown reference, or a row still referenced).
	ErrForeignKey = errors.New("foreign key violation")
	// ErrUnversionedSchema is returned when a database holds tables but no migration history.
	ErrUnversionedSchema = errors.New("database schema is not managed by migrations")
)

// classifyConstraint wraps SQLite constraint failures with the matching sentinel.
func classifyConstraint(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isStoreUniqueConstraint(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case isStoreForeignKeyConstraint(err):
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	default:
		return err
	}
}

func isStoreUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isStoreForeignKeyConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}
