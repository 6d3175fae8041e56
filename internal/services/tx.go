package services

import (
	"database/sql"
	"fmt"
	"time"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func defaultClock(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// startOfDay returns midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func int64Ptr(v int64) *int64 { return &v }

func stringPtr(v string) *string { return &v }

const dateLayout = "2006-01-02"

// parseDay parses a YYYY-MM-DD value as midnight in loc. Empty means today.
func parseDay(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return startOfDay(now, loc), nil
	}
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}
