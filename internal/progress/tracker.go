package progress

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lingtao/hsktrainer/internal/config"
	"github.com/lingtao/hsktrainer/internal/domain"
	"github.com/lingtao/hsktrainer/internal/storage"
)

// dateLayout is the calendar-day granularity used for streaks, in the
// machine's local time zone.
const dateLayout = "2006-01-02"

// Tracker owns the per-user progress aggregate. Every mutator runs as a
// serialized load-mutate-save section: the whole aggregate is persisted
// after each change, and a failed write leaves the in-memory state at
// the last successfully persisted value.
type Tracker struct {
	store        *storage.Store
	userID       string
	rewards      config.RewardsConfig
	achievements []config.AchievementRule
	now          func() time.Time

	mu  sync.Mutex
	cur *domain.Progress
}

// NewTracker creates a tracker for the configured local user.
func NewTracker(store *storage.Store, cfg *config.Config) *Tracker {
	return &Tracker{
		store:        store,
		userID:       cfg.UserID,
		rewards:      cfg.Rewards,
		achievements: cfg.Achievements,
		now:          time.Now,
	}
}

// Load returns a snapshot of the aggregate, creating the first-run
// default (with the first lesson unlocked) if nothing is persisted yet.
// The daily streak update runs here, once per load.
func (t *Tracker) Load() (*domain.Progress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadLocked(); err != nil {
		return nil, err
	}
	if err := t.updateStreakLocked(); err != nil {
		return nil, err
	}
	return copyProgress(t.cur), nil
}

// Snapshot returns a copy of the current in-memory aggregate without
// touching the streak. Loads from the store on first use.
func (t *Tracker) Snapshot() (*domain.Progress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadLocked(); err != nil {
		return nil, err
	}
	return copyProgress(t.cur), nil
}

// Save persists the current aggregate as one full-document write.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadLocked(); err != nil {
		return err
	}
	return t.store.PutProgress(t.cur)
}

func (t *Tracker) loadLocked() error {
	if t.cur != nil {
		return nil
	}

	p, err := t.store.FindProgress(t.userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = domain.NewProgress(t.userID)
		if err := t.store.PutProgress(p); err != nil {
			return err
		}
		slog.Info("Created default progress", "user", t.userID)
	} else if len(p.UnlockedLessons) == 0 {
		// Older persisted records may predate the unlock graph.
		p.UnlockedLessons = []string{domain.FirstLessonID}
	}
	t.cur = p
	return nil
}

// updateStreakLocked applies the daily streak rule: a gap of exactly
// one calendar day increments the streak, a longer gap resets it to 1,
// a same-day repeat changes nothing.
func (t *Tracker) updateStreakLocked() error {
	today := t.now().Format(dateLayout)
	return t.mutateLocked(func(p *domain.Progress) error {
		switch gap := dayGap(p.LastVisitDate, today); {
		case p.LastVisitDate == "":
			p.Streak = 1
		case gap == 0:
			// Same day, nothing to do.
		case gap == 1:
			p.Streak++
		default:
			p.Streak = 1
		}
		p.LastVisitDate = today
		return nil
	})
}

func dayGap(last, today string) int {
	lastDay, err := time.ParseInLocation(dateLayout, last, time.Local)
	if err != nil {
		return -1
	}
	todayDay, err := time.ParseInLocation(dateLayout, today, time.Local)
	if err != nil {
		return -1
	}
	// Rounding absorbs the 23h/25h days around DST transitions.
	return int(math.Round(todayDay.Sub(lastDay).Hours() / 24))
}

// mutateLocked runs fn against a working copy and persists it. The
// in-memory aggregate only advances when the write succeeds.
func (t *Tracker) mutateLocked(fn func(p *domain.Progress) error) error {
	if err := t.loadLocked(); err != nil {
		return err
	}

	work := copyProgress(t.cur)
	if err := fn(work); err != nil {
		return err
	}
	if err := t.store.PutProgress(work); err != nil {
		return err
	}
	t.cur = work
	return nil
}

func (t *Tracker) mutate(fn func(p *domain.Progress) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutateLocked(fn)
}

// read runs fn against the current aggregate under the lock, loading it
// from the store on first use.
func (t *Tracker) read(fn func(p *domain.Progress)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadLocked(); err != nil {
		return err
	}
	fn(t.cur)
	return nil
}

// PageCursor returns the saved reading position for a lesson, zero when
// none was saved.
func (t *Tracker) PageCursor(lessonID string) (int, error) {
	var page int
	err := t.read(func(p *domain.Progress) { page = p.LessonPage[lessonID] })
	return page, err
}

// PageCount returns the saved total page count for a lesson.
func (t *Tracker) PageCount(lessonID string) (int, error) {
	var count int
	err := t.read(func(p *domain.Progress) { count = p.LessonPageCount[lessonID] })
	return count, err
}

// PracticeCursor returns the saved position in a lesson's practice run.
func (t *Tracker) PracticeCursor(lessonID string) (int, error) {
	var index int
	err := t.read(func(p *domain.Progress) { index = p.LessonPracticeIndex[lessonID] })
	return index, err
}

// LessonPracticeStats returns a lesson's practice statistics, zero
// counters when the lesson has none.
func (t *Tracker) LessonPracticeStats(lessonID string) (domain.PracticeStats, error) {
	var stats domain.PracticeStats
	err := t.read(func(p *domain.Progress) { stats = p.LessonPracticeStats[lessonID] })
	return stats, err
}

// IsReadingCompleted reports whether a reading is recorded as finished.
func (t *Tracker) IsReadingCompleted(readingID string) (bool, error) {
	var done bool
	err := t.read(func(p *domain.Progress) { done = p.HasCompletedReading(readingID) })
	return done, err
}

// RecordLearnedWord adds a word to the learned set. A word already
// present is a no-op; the XP grant happens only on first add.
func (t *Tracker) RecordLearnedWord(wordID int) error {
	return t.mutate(func(p *domain.Progress) error {
		if p.HasLearnedWord(wordID) {
			return nil
		}
		p.LearnedWords = append(p.LearnedWords, wordID)
		p.XP += t.rewards.WordXP
		t.evaluateAchievements(p)
		return nil
	})
}

// SetLessonStatus updates a lesson's completion state. Completing a
// lesson grants XP, unlocks the next lesson in the same tier, merges
// newWords into the learned set, clears the lesson's practice and page
// cursors and re-evaluates achievements, all before the single persist.
func (t *Tracker) SetLessonStatus(lessonID string, status domain.LessonStatus, newWords []int) error {
	if !domain.ValidLessonStatus(status) {
		return fmt.Errorf("%w: unknown lesson status %q", storage.ErrValidation, status)
	}
	return t.mutate(func(p *domain.Progress) error {
		p.LessonStatus[lessonID] = status
		if status != domain.LessonCompleted {
			return nil
		}

		p.XP += t.rewards.LessonXP
		if next := nextLessonID(lessonID); next != "" && !p.HasUnlockedLesson(next) {
			p.UnlockedLessons = append(p.UnlockedLessons, next)
		}
		for _, wordID := range newWords {
			if !p.HasLearnedWord(wordID) {
				p.LearnedWords = append(p.LearnedWords, wordID)
			}
		}
		delete(p.LessonPracticeIndex, lessonID)
		delete(p.LessonPage, lessonID)
		t.evaluateAchievements(p)
		return nil
	})
}

// nextLessonID maps "3-2" to "3-3". Returns "" for ids that do not
// follow the level-number convention.
func nextLessonID(lessonID string) string {
	parts := strings.Split(lessonID, "-")
	if len(parts) != 2 {
		return ""
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%d", parts[0], num+1)
}

// SavePageCursor stores the reading position inside a lesson. Nil
// arguments leave the corresponding value untouched.
func (t *Tracker) SavePageCursor(lessonID string, page, totalPages *int) error {
	return t.mutate(func(p *domain.Progress) error {
		if page != nil {
			p.LessonPage[lessonID] = *page
		}
		if totalPages != nil {
			p.LessonPageCount[lessonID] = *totalPages
		}
		return nil
	})
}

// SavePracticeCursor stores the position inside a lesson's practice run.
func (t *Tracker) SavePracticeCursor(lessonID string, index int) error {
	return t.mutate(func(p *domain.Progress) error {
		p.LessonPracticeIndex[lessonID] = index
		return nil
	})
}

// ClearPracticeCursor forgets a lesson's practice position.
func (t *Tracker) ClearPracticeCursor(lessonID string) error {
	return t.mutate(func(p *domain.Progress) error {
		delete(p.LessonPracticeIndex, lessonID)
		return nil
	})
}

// RecordPracticeResult counts one practice answer. With a lesson id the
// lesson's own stats advance; with an empty id the global practice
// stats advance and a correct answer earns practice XP.
func (t *Tracker) RecordPracticeResult(lessonID string, correct bool) error {
	return t.mutate(func(p *domain.Progress) error {
		if lessonID != "" {
			stats := p.LessonPracticeStats[lessonID]
			stats.Attempts++
			if correct {
				stats.Correct++
			}
			p.LessonPracticeStats[lessonID] = stats
			return nil
		}

		p.PracticeStats.Attempts++
		if correct {
			p.PracticeStats.Correct++
			p.XP += t.rewards.PracticeXP
		}
		return nil
	})
}

// ClearLessonPracticeStats drops a lesson's practice statistics.
func (t *Tracker) ClearLessonPracticeStats(lessonID string) error {
	return t.mutate(func(p *domain.Progress) error {
		delete(p.LessonPracticeStats, lessonID)
		return nil
	})
}

// RecordCompletedReading marks a reading as finished. Already-recorded
// readings are a no-op.
func (t *Tracker) RecordCompletedReading(readingID string) error {
	return t.mutate(func(p *domain.Progress) error {
		if !p.HasCompletedReading(readingID) {
			p.CompletedReadings = append(p.CompletedReadings, readingID)
		}
		return nil
	})
}

// Reset restores the first-run defaults, including the pre-unlocked
// first lesson, and persists them.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := domain.NewProgress(t.userID)
	p.LastVisitDate = t.now().Format(dateLayout)
	if err := t.store.PutProgress(p); err != nil {
		return err
	}
	t.cur = p
	return nil
}

// evaluateAchievements appends every rule the current counters satisfy
// and that is not unlocked yet. Achievements are never removed or
// re-added.
func (t *Tracker) evaluateAchievements(p *domain.Progress) {
	for _, rule := range t.achievements {
		if p.HasAchievement(rule.ID) {
			continue
		}
		if rule.MinLearnedWords == 0 && rule.MinStreak == 0 {
			continue
		}
		if len(p.LearnedWords) < rule.MinLearnedWords || p.Streak < rule.MinStreak {
			continue
		}
		p.Achievements = append(p.Achievements, domain.Achievement{
			ID:          rule.ID,
			Icon:        rule.Icon,
			Title:       rule.Title,
			Description: rule.Description,
			UnlockedAt:  t.now().UnixMilli(),
		})
		slog.Info("Achievement unlocked", "id", rule.ID, "user", p.UserID)
	}
}

// copyProgress deep-copies the aggregate so callers never alias the
// tracker's internal state.
func copyProgress(p *domain.Progress) *domain.Progress {
	c := *p
	c.LearnedWords = append([]int(nil), p.LearnedWords...)
	c.Achievements = append([]domain.Achievement(nil), p.Achievements...)
	c.UnlockedLessons = append([]string(nil), p.UnlockedLessons...)
	c.CompletedReadings = append([]string(nil), p.CompletedReadings...)
	c.LessonStatus = make(map[string]domain.LessonStatus, len(p.LessonStatus))
	for k, v := range p.LessonStatus {
		c.LessonStatus[k] = v
	}
	c.LessonPage = make(map[string]int, len(p.LessonPage))
	for k, v := range p.LessonPage {
		c.LessonPage[k] = v
	}
	c.LessonPageCount = make(map[string]int, len(p.LessonPageCount))
	for k, v := range p.LessonPageCount {
		c.LessonPageCount[k] = v
	}
	c.LessonPracticeIndex = make(map[string]int, len(p.LessonPracticeIndex))
	for k, v := range p.LessonPracticeIndex {
		c.LessonPracticeIndex[k] = v
	}
	c.LessonPracticeStats = make(map[string]domain.PracticeStats, len(p.LessonPracticeStats))
	for k, v := range p.LessonPracticeStats {
		c.LessonPracticeStats[k] = v
	}
	return &c
}
