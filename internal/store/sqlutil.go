package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// dbTimeLayout is fixed width so stored timestamps sort lexically.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func dbFormatTime(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

func dbParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// commitChecked verifies deferred foreign keys on the file tables before
// committing. SQLite leaves the transaction open when COMMIT itself fails a
// deferred check, which would poison the single pooled connection.
func commitChecked(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"files", "file_versions"} {
		rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check("+table+")")
		if err != nil {
			return err
		}
		violated := rows.Next()
		if err := rows.Close(); err != nil {
			return err
		}
		if violated {
			return fmt.Errorf("%w: %s references a missing row", ErrForeignKey, table)
		}
	}
	return tx.Commit()
}
