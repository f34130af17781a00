package domain

// DefaultUserID identifies the single local user.
const DefaultUserID = "default"

// FirstLessonID is always unlocked, even right after a reset.
const FirstLessonID = "1-1"

// LessonStatus is the completion state of a lesson.
type LessonStatus string

const (
	LessonNotStarted LessonStatus = "not_started"
	LessonInProgress LessonStatus = "in_progress"
	LessonCompleted  LessonStatus = "completed"
)

// ValidLessonStatus reports whether s is one of the known statuses.
func ValidLessonStatus(s LessonStatus) bool {
	switch s {
	case LessonNotStarted, LessonInProgress, LessonCompleted:
		return true
	}
	return false
}

// PracticeStats counts practice attempts and correct answers.
type PracticeStats struct {
	Attempts int `json:"total"`
	Correct  int `json:"correct"`
}

// Achievement is one unlocked achievement. The sequence on Progress is
// append-only and unique by ID.
type Achievement struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UnlockedAt  int64  `json:"unlockedAt"` // milliseconds since epoch
}

// Progress is the single mutable per-user aggregate. It is persisted as
// one JSON document and always written as a whole, never patched.
type Progress struct {
	UserID              string                   `json:"userId"`
	LearnedWords        []int                    `json:"learnedWords"`
	LessonStatus        map[string]LessonStatus  `json:"lessonProgress"`
	LessonPage          map[string]int           `json:"lessonProgressPage"`
	LessonPageCount     map[string]int           `json:"lessonPageCount"`
	LessonPracticeIndex map[string]int           `json:"lessonPracticeIndex"`
	LessonPracticeStats map[string]PracticeStats `json:"lessonPracticeStats"`
	Streak              int                      `json:"streak"`
	XP                  int                      `json:"xp"`
	Achievements        []Achievement            `json:"achievements"`
	LastVisitDate       string                   `json:"lastVisitDate"` // YYYY-MM-DD, local time
	UnlockedLessons     []string                 `json:"unlockedLessons"`
	PracticeStats       PracticeStats            `json:"practiceStats"`
	CompletedReadings   []string                 `json:"completedReadings"`
}

// NewProgress returns the first-run aggregate: empty counters with the
// first lesson already unlocked.
func NewProgress(userID string) *Progress {
	return &Progress{
		UserID:              userID,
		LearnedWords:        []int{},
		LessonStatus:        map[string]LessonStatus{},
		LessonPage:          map[string]int{},
		LessonPageCount:     map[string]int{},
		LessonPracticeIndex: map[string]int{},
		LessonPracticeStats: map[string]PracticeStats{},
		Achievements:        []Achievement{},
		UnlockedLessons:     []string{FirstLessonID},
		CompletedReadings:   []string{},
	}
}

// HasLearnedWord reports whether the word id is already recorded.
func (p *Progress) HasLearnedWord(id int) bool {
	for _, w := range p.LearnedWords {
		if w == id {
			return true
		}
	}
	return false
}

// HasUnlockedLesson reports whether the lesson id is unlocked.
func (p *Progress) HasUnlockedLesson(lessonID string) bool {
	for _, l := range p.UnlockedLessons {
		if l == lessonID {
			return true
		}
	}
	return false
}

// HasCompletedReading reports whether the reading id is recorded.
func (p *Progress) HasCompletedReading(readingID string) bool {
	for _, r := range p.CompletedReadings {
		if r == readingID {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement id is unlocked.
func (p *Progress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}
