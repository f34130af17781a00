package srs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lingtao/hsktrainer/internal/domain"
	"github.com/lingtao/hsktrainer/internal/storage"
)

// Scheduler owns the review records. Every reviewable item gets at most
// one record, created on first exposure and updated on every grade.
type Scheduler struct {
	store *storage.Store
	now   func() time.Time
}

// NewScheduler creates a scheduler over the given store.
func NewScheduler(store *storage.Store) *Scheduler {
	return &Scheduler{store: store, now: time.Now}
}

// Enqueue registers an item for spaced repetition. Idempotent: if a
// record for the (itemType, itemRef) pair already exists it is returned
// unchanged. The existence check and the insert are one atomic
// statement in the store, so concurrent enqueues of the same pair
// cannot create duplicates.
func (s *Scheduler) Enqueue(itemType domain.ItemType, itemRef string, level domain.Level) (*domain.ReviewRecord, error) {
	if !domain.ValidItemType(itemType) {
		return nil, fmt.Errorf("%w: unknown item type %q", storage.ErrValidation, itemType)
	}

	rec := &domain.ReviewRecord{
		ID:           uuid.NewString(),
		ItemType:     itemType,
		ItemRef:      itemRef,
		Level:        level,
		Easiness:     domain.DefaultEasiness,
		Interval:     0,
		Repetitions:  0,
		NextReviewAt: s.now(),
	}

	inserted, err := s.store.InsertReviewIfAbsent(rec)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return s.store.ReviewByItem(itemType, itemRef)
	}
	slog.Debug("Enqueued review item", "type", itemType, "ref", itemRef, "level", level)
	return rec, nil
}

// DueItems returns the records due at asOf, ordered by next review time
// ascending. An empty slice means nothing is due.
func (s *Scheduler) DueItems(asOf time.Time) ([]domain.ReviewRecord, error) {
	return s.store.DueReviews(asOf)
}

// Grade applies a quality grade (0-5) to a record and persists the
// updated schedule. Returns ErrValidation for an out-of-range quality
// and ErrReviewNotFound for an unknown id, with no state change in
// either case.
func (s *Scheduler) Grade(id string, quality int) (*domain.ReviewRecord, error) {
	if quality < MinQuality || quality > MaxQuality {
		return nil, fmt.Errorf("%w: quality %d outside %d-%d", storage.ErrValidation, quality, MinQuality, MaxQuality)
	}

	rec, err := s.store.ReviewByID(id)
	if err != nil {
		return nil, err
	}

	next := Next(State{
		Easiness:     rec.Easiness,
		Interval:     rec.Interval,
		Repetitions:  rec.Repetitions,
		NextReviewAt: rec.NextReviewAt,
		LastReviewAt: rec.LastReviewAt,
	}, quality, s.now())

	rec.Easiness = next.Easiness
	rec.Interval = next.Interval
	rec.Repetitions = next.Repetitions
	rec.NextReviewAt = next.NextReviewAt
	rec.LastReviewAt = next.LastReviewAt

	if err := s.store.UpdateReview(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
