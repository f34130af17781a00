package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every component that touches the store.
var (
	// ErrStorageUnavailable is returned when the database file cannot be
	// opened at all. Fatal for the open attempt; no internal retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMigrationFailed is returned when a schema upgrade could not
	// complete. Opening again retries the migration from scratch.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrSeedFailed is returned when a content table could not be
	// populated from its bundle. The table is left empty so the next
	// read retries seeding.
	ErrSeedFailed = errors.New("seed failed")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when input is rejected before any state
	// change (bad grade quality, malformed bundle record).
	ErrValidation = errors.New("validation failed")

	// Entity-specific not-found errors, all matching errors.Is(err, ErrNotFound).

	ErrWordNotFound     = fmt.Errorf("%w: word", ErrNotFound)
	ErrLessonNotFound   = fmt.Errorf("%w: lesson", ErrNotFound)
	ErrGrammarNotFound  = fmt.Errorf("%w: grammar point", ErrNotFound)
	ErrReadingNotFound  = fmt.Errorf("%w: reading", ErrNotFound)
	ErrExamNotFound     = fmt.Errorf("%w: exam", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("%w: exercise", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("%w: review record", ErrNotFound)
)

// IsNotFound reports whether err is any kind of not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
