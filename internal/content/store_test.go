package content

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingtao/hsktrainer/internal/domain"
	"github.com/lingtao/hsktrainer/internal/storage"
)

func newTestContentStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), db
}

func TestFirstReadSeedsTable(t *testing.T) {
	s, db := newTestContentStore(t)

	n, err := db.CountWords()
	require.NoError(t, err)
	require.Zero(t, n)

	words, err := s.Words()
	require.NoError(t, err)
	assert.NotEmpty(t, words)

	n, err = db.CountWords()
	require.NoError(t, err)
	assert.Equal(t, len(words), n)
}

func TestSeedingIsIdempotent(t *testing.T) {
	s, db := newTestContentStore(t)

	first, err := s.Words()
	require.NoError(t, err)
	before, err := db.CountWords()
	require.NoError(t, err)

	again, err := s.Words()
	require.NoError(t, err)
	after, err := db.CountWords()
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, first, again)
}

func TestSeedSkippedWhenTablePopulated(t *testing.T) {
	_, db := newTestContentStore(t)

	// A populated table is left alone even when it diverges from the
	// bundles.
	custom := []domain.Word{
		{ID: 9001, Simplified: "猫", Pinyin: "māo", Translation: domain.Translation{RU: "кот"}, Level: "1"},
	}
	require.NoError(t, db.SeedWords(custom))

	s := NewStore(db)
	words, err := s.Words()
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, 9001, words[0].ID)
}

func TestSeedAllPopulatesEveryTable(t *testing.T) {
	s, db := newTestContentStore(t)

	require.NoError(t, s.SeedAll())

	counts := []struct {
		table string
		count func() (int, error)
	}{
		{"vocabulary", db.CountWords},
		{"lessons", db.CountLessons},
		{"grammar", db.CountGrammar},
		{"readings", db.CountReadings},
		{"exams", db.CountExams},
		{"exercises", db.CountExercises},
		{"review_bank", db.CountReviewBank},
	}
	for _, c := range counts {
		n, err := c.count()
		require.NoError(t, err)
		assert.Positive(t, n, c.table)
	}
}

func TestWordsByLevelPartition(t *testing.T) {
	s, _ := newTestContentStore(t)

	for _, level := range domain.Levels {
		words, err := s.WordsByLevel(level)
		require.NoError(t, err)
		require.NotEmpty(t, words, "level %s", level)
		for _, w := range words {
			assert.Equal(t, level, w.Level)
		}
	}
}

func TestGrammarTaggedByBundleLevel(t *testing.T) {
	s, _ := newTestContentStore(t)

	// Grammar bundles carry no per-record level; it comes from the file.
	points, err := s.GrammarByLevel("2")
	require.NoError(t, err)
	require.NotEmpty(t, points)
	for _, g := range points {
		assert.Equal(t, domain.Level("2"), g.Level)
	}
}

func TestLessonRoundTripThroughSeed(t *testing.T) {
	s, _ := newTestContentStore(t)

	lesson, err := s.LessonByID("1-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Level("1"), lesson.Level)
	assert.Equal(t, 1, lesson.LessonNumber)
	assert.NotEmpty(t, lesson.Title)
	assert.NotEmpty(t, lesson.NewWords)
	assert.NotEmpty(t, lesson.Dialogues)

	_, err = s.LessonByID("9-9")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReadingsCarryTheirOwnLevel(t *testing.T) {
	s, _ := newTestContentStore(t)

	readings, err := s.Readings()
	require.NoError(t, err)
	require.NotEmpty(t, readings)
	for _, r := range readings {
		assert.NotEmpty(t, r.Level, "reading %s", r.ID)
		assert.NotEmpty(t, r.Questions, "reading %s", r.ID)
	}
}

func TestExerciseKeysSurviveReseed(t *testing.T) {
	s, db := newTestContentStore(t)

	first, err := s.Exercises()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Simulate a destructive reseed: wipe the table and read through a
	// fresh store so the seed runs again.
	require.NoError(t, db.SeedExercises(nil))
	second, err := NewStore(db).Exercises()
	require.NoError(t, err)

	ids := func(items []domain.BankExercise) []string {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.ID
		}
		return out
	}
	assert.ElementsMatch(t, ids(first), ids(second))
}

func TestReviewBankByType(t *testing.T) {
	s, _ := newTestContentStore(t)

	items, err := s.ReviewBankByType("multiple-choice")
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, "multiple-choice", item.Type)
	}
}
