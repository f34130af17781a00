package content

import (
	"io/fs"
	"log/slog"
	"sync"

	"github.com/lingtao/hsktrainer/internal/domain"
	"github.com/lingtao/hsktrainer/internal/storage"
)

// Store is the read API over the content tables. Reads have a
// first-call side effect: an empty table is seeded from its bundle
// before the read returns. Seeding is idempotent and all-or-nothing per
// table, so a failed seed leaves the table empty and the next read
// retries it.
type Store struct {
	db      *storage.Store
	bundles fs.FS

	// One seed section per table. Different tables seed independently;
	// two seed attempts for the same table never interleave.
	vocabulary seedState
	lessons    seedState
	grammar    seedState
	readings   seedState
	exams      seedState
	exercises  seedState
	reviewBank seedState
}

// seedState guards one table's seed-on-empty section. ready is only set
// after the table is known to be populated, which makes later reads
// skip the count query.
type seedState struct {
	mu    sync.Mutex
	ready bool
}

// NewStore creates a content store seeded from the embedded bundles.
func NewStore(db *storage.Store) *Store {
	return NewStoreWithBundles(db, EmbeddedBundles())
}

// NewStoreWithBundles creates a content store seeded from an arbitrary
// bundle tree, e.g. a git-synced directory.
func NewStoreWithBundles(db *storage.Store, bundles fs.FS) *Store {
	return &Store{db: db, bundles: bundles}
}

// ensure runs the seed-on-empty section for one table: under the
// table's lock it re-checks emptiness and, only if the table is empty,
// loads the bundle and replaces the table in one transaction.
func (s *Store) ensure(state *seedState, table string, count func() (int, error), seed func() (int, error)) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ready {
		return nil
	}

	n, err := count()
	if err != nil {
		return err
	}
	if n > 0 {
		state.ready = true
		return nil
	}

	records, err := seed()
	if err != nil {
		slog.Error("Seeding failed", "table", table, "error", err)
		return err
	}
	slog.Info("Seeded table", "table", table, "records", records)
	state.ready = true
	return nil
}

func (s *Store) ensureWords() error {
	return s.ensure(&s.vocabulary, "vocabulary", s.db.CountWords, func() (int, error) {
		words, err := loadWords(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(words), s.db.SeedWords(words)
	})
}

func (s *Store) ensureLessons() error {
	return s.ensure(&s.lessons, "lessons", s.db.CountLessons, func() (int, error) {
		lessons, err := loadLessons(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(lessons), s.db.SeedLessons(lessons)
	})
}

func (s *Store) ensureGrammar() error {
	return s.ensure(&s.grammar, "grammar", s.db.CountGrammar, func() (int, error) {
		points, err := loadGrammar(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(points), s.db.SeedGrammar(points)
	})
}

func (s *Store) ensureReadings() error {
	return s.ensure(&s.readings, "readings", s.db.CountReadings, func() (int, error) {
		readings, err := loadReadings(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(readings), s.db.SeedReadings(readings)
	})
}

func (s *Store) ensureExams() error {
	return s.ensure(&s.exams, "exams", s.db.CountExams, func() (int, error) {
		exams, err := loadExams(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(exams), s.db.SeedExams(exams)
	})
}

func (s *Store) ensureExercises() error {
	return s.ensure(&s.exercises, "exercises", s.db.CountExercises, func() (int, error) {
		items, err := loadExercises(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(items), s.db.SeedExercises(items)
	})
}

func (s *Store) ensureReviewBank() error {
	return s.ensure(&s.reviewBank, "review_bank", s.db.CountReviewBank, func() (int, error) {
		items, err := loadReviewBank(s.bundles)
		if err != nil {
			return 0, err
		}
		return len(items), s.db.SeedReviewBank(items)
	})
}

// SeedAll seeds every empty content table up front. Reads trigger the
// same seeding lazily; this exists for first-run warmup.
func (s *Store) SeedAll() error {
	for _, ensure := range []func() error{
		s.ensureWords, s.ensureLessons, s.ensureGrammar,
		s.ensureReadings, s.ensureExams, s.ensureExercises, s.ensureReviewBank,
	} {
		if err := ensure(); err != nil {
			return err
		}
	}
	return nil
}

// Words returns all vocabulary entries.
func (s *Store) Words() ([]domain.Word, error) {
	if err := s.ensureWords(); err != nil {
		return nil, err
	}
	return s.db.Words()
}

// WordsByLevel returns the vocabulary for one level.
func (s *Store) WordsByLevel(level domain.Level) ([]domain.Word, error) {
	if err := s.ensureWords(); err != nil {
		return nil, err
	}
	return s.db.WordsByLevel(level)
}

// WordByID returns a single word or a not-found error.
func (s *Store) WordByID(id int) (*domain.Word, error) {
	if err := s.ensureWords(); err != nil {
		return nil, err
	}
	return s.db.WordByID(id)
}

// Lessons returns all lessons ordered by level and lesson number.
func (s *Store) Lessons() ([]domain.Lesson, error) {
	if err := s.ensureLessons(); err != nil {
		return nil, err
	}
	return s.db.Lessons()
}

// LessonsByLevel returns the lessons for one level.
func (s *Store) LessonsByLevel(level domain.Level) ([]domain.Lesson, error) {
	if err := s.ensureLessons(); err != nil {
		return nil, err
	}
	return s.db.LessonsByLevel(level)
}

// LessonByID returns a single lesson or a not-found error.
func (s *Store) LessonByID(id string) (*domain.Lesson, error) {
	if err := s.ensureLessons(); err != nil {
		return nil, err
	}
	return s.db.LessonByID(id)
}

// GrammarPoints returns all grammar points.
func (s *Store) GrammarPoints() ([]domain.GrammarPoint, error) {
	if err := s.ensureGrammar(); err != nil {
		return nil, err
	}
	return s.db.GrammarPoints()
}

// GrammarByLevel returns the grammar points for one level.
func (s *Store) GrammarByLevel(level domain.Level) ([]domain.GrammarPoint, error) {
	if err := s.ensureGrammar(); err != nil {
		return nil, err
	}
	return s.db.GrammarByLevel(level)
}

// GrammarByID returns a single grammar point or a not-found error.
func (s *Store) GrammarByID(id string) (*domain.GrammarPoint, error) {
	if err := s.ensureGrammar(); err != nil {
		return nil, err
	}
	return s.db.GrammarByID(id)
}

// Readings returns all readings.
func (s *Store) Readings() ([]domain.Reading, error) {
	if err := s.ensureReadings(); err != nil {
		return nil, err
	}
	return s.db.Readings()
}

// ReadingsByLevel returns the readings for one level.
func (s *Store) ReadingsByLevel(level domain.Level) ([]domain.Reading, error) {
	if err := s.ensureReadings(); err != nil {
		return nil, err
	}
	return s.db.ReadingsByLevel(level)
}

// ReadingByID returns a single reading or a not-found error.
func (s *Store) ReadingByID(id string) (*domain.Reading, error) {
	if err := s.ensureReadings(); err != nil {
		return nil, err
	}
	return s.db.ReadingByID(id)
}

// Exams returns all exams.
func (s *Store) Exams() ([]domain.Exam, error) {
	if err := s.ensureExams(); err != nil {
		return nil, err
	}
	return s.db.Exams()
}

// ExamsByLevel returns the exams for one level.
func (s *Store) ExamsByLevel(level domain.Level) ([]domain.Exam, error) {
	if err := s.ensureExams(); err != nil {
		return nil, err
	}
	return s.db.ExamsByLevel(level)
}

// ExamByID returns a single exam or a not-found error.
func (s *Store) ExamByID(id string) (*domain.Exam, error) {
	if err := s.ensureExams(); err != nil {
		return nil, err
	}
	return s.db.ExamByID(id)
}

// Exercises returns all standalone exercises.
func (s *Store) Exercises() ([]domain.BankExercise, error) {
	if err := s.ensureExercises(); err != nil {
		return nil, err
	}
	return s.db.Exercises()
}

// ExercisesByLevel returns the exercises for one level.
func (s *Store) ExercisesByLevel(level domain.Level) ([]domain.BankExercise, error) {
	if err := s.ensureExercises(); err != nil {
		return nil, err
	}
	return s.db.ExercisesByLevel(level)
}

// ExercisesByType returns the exercises of one type.
func (s *Store) ExercisesByType(exerciseType string) ([]domain.BankExercise, error) {
	if err := s.ensureExercises(); err != nil {
		return nil, err
	}
	return s.db.ExercisesByType(exerciseType)
}

// ExerciseByID returns a single exercise or a not-found error.
func (s *Store) ExerciseByID(id string) (*domain.BankExercise, error) {
	if err := s.ensureExercises(); err != nil {
		return nil, err
	}
	return s.db.ExerciseByID(id)
}

// ReviewBank returns all review bank items.
func (s *Store) ReviewBank() ([]domain.BankExercise, error) {
	if err := s.ensureReviewBank(); err != nil {
		return nil, err
	}
	return s.db.ReviewBank()
}

// ReviewBankByLevel returns the review bank items for one level.
func (s *Store) ReviewBankByLevel(level domain.Level) ([]domain.BankExercise, error) {
	if err := s.ensureReviewBank(); err != nil {
		return nil, err
	}
	return s.db.ReviewBankByLevel(level)
}

// ReviewBankByType returns the review bank items of one type.
func (s *Store) ReviewBankByType(exerciseType string) ([]domain.BankExercise, error) {
	if err := s.ensureReviewBank(); err != nil {
		return nil, err
	}
	return s.db.ReviewBankByType(exerciseType)
}
