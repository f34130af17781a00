package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lingtao/hsktrainer/internal/domain"
)

// Review timestamps are persisted as milliseconds since the Unix epoch.
// A last_review_at of 0 marks an item that has never been graded.

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// InsertReviewIfAbsent inserts the record unless one already exists for
// the same (item_type, item_ref) pair. The uniqueness check and the
// insert are a single statement, so concurrent callers cannot create
// duplicates. Reports whether the row was inserted.
func (s *Store) InsertReviewIfAbsent(rec *domain.ReviewRecord) (bool, error) {
	res, err := s.conn.Exec(`
		INSERT INTO reviews (id, item_type, item_ref, level, easiness, interval, repetitions, next_review_at, last_review_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_type, item_ref) DO NOTHING
	`,
		rec.ID,
		string(rec.ItemType),
		rec.ItemRef,
		string(rec.Level),
		rec.Easiness,
		rec.Interval,
		rec.Repetitions,
		toMillis(rec.NextReviewAt),
		toMillis(rec.LastReviewAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert review for %s/%s: %w", rec.ItemType, rec.ItemRef, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

const selectReviews = `
	SELECT id, item_type, item_ref, level, easiness, interval, repetitions, next_review_at, last_review_at
	FROM reviews
`

func scanReview(scan func(dest ...any) error) (domain.ReviewRecord, error) {
	var (
		rec                    domain.ReviewRecord
		itemType, level        string
		nextReview, lastReview int64
	)
	err := scan(
		&rec.ID, &itemType, &rec.ItemRef, &level,
		&rec.Easiness, &rec.Interval, &rec.Repetitions,
		&nextReview, &lastReview,
	)
	if err != nil {
		return rec, err
	}
	rec.ItemType = domain.ItemType(itemType)
	rec.Level = domain.Level(level)
	rec.NextReviewAt = fromMillis(nextReview)
	rec.LastReviewAt = fromMillis(lastReview)
	return rec, nil
}

// ReviewByID returns the record with the given id or ErrReviewNotFound.
func (s *Store) ReviewByID(id string) (*domain.ReviewRecord, error) {
	row := s.conn.QueryRow(selectReviews+" WHERE id = ?", id)
	rec, err := scanReview(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review %s: %w", id, err)
	}
	return &rec, nil
}

// ReviewByItem returns the record for an (itemType, itemRef) pair or
// ErrReviewNotFound.
func (s *Store) ReviewByItem(itemType domain.ItemType, itemRef string) (*domain.ReviewRecord, error) {
	row := s.conn.QueryRow(selectReviews+" WHERE item_type = ? AND item_ref = ?", string(itemType), itemRef)
	rec, err := scanReview(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review for %s/%s: %w", itemType, itemRef, err)
	}
	return &rec, nil
}

// DueReviews returns every record with next_review_at <= asOf, ordered
// by next_review_at ascending. Reads the committed set; concurrent
// grading of other records never blocks this query.
func (s *Store) DueReviews(asOf time.Time) ([]domain.ReviewRecord, error) {
	rows, err := s.conn.Query(
		selectReviews+" WHERE next_review_at <= ? ORDER BY next_review_at ASC",
		asOf.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reviews: %w", err)
	}
	defer rows.Close()

	var due []domain.ReviewRecord
	for rows.Next() {
		rec, err := scanReview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		due = append(due, rec)
	}
	return due, rows.Err()
}

// UpdateReview persists the scheduling fields of an existing record.
// Returns ErrReviewNotFound if the id is unknown.
func (s *Store) UpdateReview(rec *domain.ReviewRecord) error {
	res, err := s.conn.Exec(`
		UPDATE reviews
		SET easiness = ?, interval = ?, repetitions = ?, next_review_at = ?, last_review_at = ?
		WHERE id = ?
	`,
		rec.Easiness,
		rec.Interval,
		rec.Repetitions,
		toMillis(rec.NextReviewAt),
		toMillis(rec.LastReviewAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// CountReviews reports the number of review records.
func (s *Store) CountReviews() (int, error) { return s.countRows("reviews") }
