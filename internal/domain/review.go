package domain

import "time"

// ItemType tags which content table a review record points into.
type ItemType string

const (
	ItemWord     ItemType = "word"
	ItemGrammar  ItemType = "grammar"
	ItemExercise ItemType = "exercise"
)

// ValidItemType reports whether t is one of the known item types.
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemWord, ItemGrammar, ItemExercise:
		return true
	}
	return false
}

// ReviewRecord is the spaced-repetition state for one reviewable item.
// There is at most one record per (ItemType, ItemRef) pair.
//
// Easiness never drops below 1.3. Interval is in whole days.
// LastReviewAt is the zero time for an item that has never been graded.
type ReviewRecord struct {
	ID           string
	ItemType     ItemType
	ItemRef      string
	Level        Level
	Easiness     float64
	Interval     int
	Repetitions  int
	NextReviewAt time.Time
	LastReviewAt time.Time
}

// DefaultEasiness is the SM-2 starting easiness factor for a new item.
const DefaultEasiness = 2.5
