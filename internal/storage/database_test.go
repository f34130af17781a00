package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingtao/hsktrainer/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// stampVersion rewrites PRAGMA user_version on a closed database file to
// simulate a store written by an older build.
func stampVersion(t *testing.T, path string, version int) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	require.NoError(t, err)
}

func seedFixtures(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.SeedWords([]domain.Word{
		{ID: 1, Simplified: "你", Pinyin: "nǐ", Translation: domain.Translation{RU: "ты"}, Level: "1"},
		{ID: 2, Simplified: "好", Pinyin: "hǎo", Translation: domain.Translation{RU: "хороший"}, Level: "1"},
	}))
	require.NoError(t, s.PutProgress(domain.NewProgress("default")))
}

func TestOpenStampsCurrentVersion(t *testing.T) {
	s := newTestStore(t)

	v, err := s.SchemaUserVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)

	n, err := s.CountWords()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	seedFixtures(t, s)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	// Reopening at the current version keeps all data.
	n, err := s.CountWords()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := s.FindProgress("default")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestOpenUpgradeReseedsContentAndWipesProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	seedFixtures(t, s)
	rec := &domain.ReviewRecord{
		ID: "r1", ItemType: domain.ItemWord, ItemRef: "1",
		Level: "1", Easiness: domain.DefaultEasiness,
	}
	inserted, err := s.InsertReviewIfAbsent(rec)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, s.Close())

	for old := 1; old <= 6; old++ {
		t.Run(fmt.Sprintf("from v%d", old), func(t *testing.T) {
			stampVersion(t, path, old)

			s, err := Open(path)
			require.NoError(t, err)
			defer s.Close()

			v, err := s.SchemaUserVersion()
			require.NoError(t, err)
			assert.Equal(t, SchemaVersion, v)

			words, err := s.CountWords()
			require.NoError(t, err)
			assert.Zero(t, words)

			reviews, err := s.CountReviews()
			require.NoError(t, err)
			assert.Zero(t, reviews)

			p, err := s.FindProgress("default")
			require.NoError(t, err)
			assert.Nil(t, p)
		})
	}
}

func TestConcurrentOpensSerialize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Open(path)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = s.Close()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "open %d", i)
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.SchemaUserVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	stampVersion(t, path, SchemaVersion+1)

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrMigrationFailed)
}

func TestWordRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := domain.Word{
		ID:         1,
		Simplified: "你",
		Pinyin:     "nǐ",
		Translation: domain.Translation{
			RU: "ты",
			EN: "you",
		},
		POS:      []string{"pron"},
		Level:    "1",
		AudioURL: "audio/ni.mp3",
	}
	require.NoError(t, s.SeedWords([]domain.Word{want}))

	got, err := s.WordByID(1)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = s.WordByID(99)
	assert.ErrorIs(t, err, ErrWordNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedReplacesPreviousRows(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SeedWords([]domain.Word{
		{ID: 1, Simplified: "一", Pinyin: "yī", Translation: domain.Translation{RU: "один"}, Level: "1"},
		{ID: 2, Simplified: "二", Pinyin: "èr", Translation: domain.Translation{RU: "два"}, Level: "1"},
	}))
	require.NoError(t, s.SeedWords([]domain.Word{
		{ID: 3, Simplified: "三", Pinyin: "sān", Translation: domain.Translation{RU: "три"}, Level: "1"},
	}))

	words, err := s.Words()
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, 3, words[0].ID)
}

func TestLessonsOrderedByNumber(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SeedLessons([]domain.Lesson{
		{ID: "1-3", Level: "1", LessonNumber: 3, Title: "Третий"},
		{ID: "1-1", Level: "1", LessonNumber: 1, Title: "Первый"},
		{ID: "1-2", Level: "1", LessonNumber: 2, Title: "Второй"},
	}))

	lessons, err := s.LessonsByLevel("1")
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, "1-1", lessons[0].ID)
	assert.Equal(t, "1-2", lessons[1].ID)
	assert.Equal(t, "1-3", lessons[2].ID)
}

func TestProgressRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p, err := s.FindProgress("default")
	require.NoError(t, err)
	assert.Nil(t, p)

	want := domain.NewProgress("default")
	want.XP = 60
	want.LearnedWords = []int{1, 2, 3}
	want.LessonStatus["1-1"] = domain.LessonCompleted
	require.NoError(t, s.PutProgress(want))

	got, err := s.FindProgress("default")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 60, got.XP)
	assert.Equal(t, []int{1, 2, 3}, got.LearnedWords)
	assert.Equal(t, domain.LessonCompleted, got.LessonStatus["1-1"])

	// A second put replaces the document wholesale.
	want.XP = 110
	require.NoError(t, s.PutProgress(want))
	got, err = s.FindProgress("default")
	require.NoError(t, err)
	assert.Equal(t, 110, got.XP)
}

func TestBankRoundTrip(t *testing.T) {
	s := newTestStore(t)

	items := []domain.BankExercise{
		{ID: "a1b2", Level: "1", Type: "fill-blank", Sentence: "我___学生。", Options: []string{"是", "不"}, Answer: "是"},
		{ID: "c3d4", Level: "2", Type: "multiple-choice", Question: "«Начинать»:", Options: []string{"开始", "告诉"}, Answer: "开始"},
	}
	require.NoError(t, s.SeedExercises(items))

	byLevel, err := s.ExercisesByLevel("1")
	require.NoError(t, err)
	require.Len(t, byLevel, 1)
	assert.Equal(t, "a1b2", byLevel[0].ID)

	byType, err := s.ExercisesByType("multiple-choice")
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "c3d4", byType[0].ID)

	got, err := s.ExerciseByID("a1b2")
	require.NoError(t, err)
	assert.Equal(t, items[0], *got)

	_, err = s.ExerciseByID("missing")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}
