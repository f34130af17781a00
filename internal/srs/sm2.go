package srs

import (
	"math"
	"time"
)

// Quality bounds for a review grade. 0 is a complete blackout, 5 a
// perfect response. Grades of PassThreshold and above count as a pass.
const (
	MinQuality    = 0
	MaxQuality    = 5
	PassThreshold = 3
)

// MinEasiness is the SM-2 floor for the easiness factor.
const MinEasiness = 1.3

// State is the scheduling state of one item as seen by the SM-2 step.
type State struct {
	Easiness     float64
	Interval     int // days
	Repetitions  int
	NextReviewAt time.Time
	LastReviewAt time.Time
}

// Next applies one SM-2 grade step and returns the new state. It is a
// pure function of (state, quality, now): identical inputs always yield
// identical outputs.
//
// A passing grade walks the 1, 6, round(interval*easiness) interval
// ladder and increments repetitions; a failing grade resets repetitions
// to zero and schedules the item for tomorrow. The easiness adjustment
// applies on both paths and never drops below MinEasiness. The new
// interval is computed against the easiness in effect before the
// adjustment.
func Next(s State, quality int, now time.Time) State {
	next := s

	if quality >= PassThreshold {
		switch s.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(s.Interval) * s.Easiness))
		}
		next.Repetitions = s.Repetitions + 1
	} else {
		next.Repetitions = 0
		next.Interval = 1
	}

	q := float64(quality)
	next.Easiness = math.Max(MinEasiness, s.Easiness+0.1-(5-q)*(0.08+(5-q)*0.02))

	next.LastReviewAt = now
	next.NextReviewAt = now.Add(time.Duration(next.Interval) * 24 * time.Hour)
	return next
}
