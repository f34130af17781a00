package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingtao/hsktrainer/internal/domain"
	"github.com/lingtao/hsktrainer/internal/storage"
)

// wordBundles builds a minimal vocabulary bundle tree with empty files
// for every level except the first.
func wordBundles(hsk1 string) fstest.MapFS {
	fsys := fstest.MapFS{
		"hsk1.json": {Data: []byte(hsk1)},
	}
	for _, level := range []string{"2", "3", "4", "5"} {
		fsys["hsk"+level+".json"] = &fstest.MapFile{Data: []byte("[]")}
	}
	return fsys
}

func TestLoadWordsTagsBundleLevel(t *testing.T) {
	fsys := wordBundles(`[
		{"id": 1, "simplified": "你", "pinyin": "nǐ", "translations": {"ru": "ты"}},
		{"id": 2, "simplified": "好", "pinyin": "hǎo", "translations": {"ru": "хороший"}, "level": 3}
	]`)

	words, err := loadWords(fsys)
	require.NoError(t, err)
	require.Len(t, words, 2)

	// A record without a level inherits the bundle's level; an explicit
	// level wins, whether encoded as a string or a bare number.
	assert.Equal(t, domain.Level("1"), words[0].Level)
	assert.Equal(t, domain.Level("3"), words[1].Level)
}

func TestLoadWordsRejectsMalformedBundle(t *testing.T) {
	fsys := wordBundles(`{"not": "an array"`)

	_, err := loadWords(fsys)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestLoadWordsRejectsIncompleteRecord(t *testing.T) {
	fsys := wordBundles(`[{"id": 1, "simplified": "你"}]`)

	_, err := loadWords(fsys)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestLoadWordsRejectsUnknownLevel(t *testing.T) {
	// "9" is not an HSK tier; a record carrying it must not seed.
	fsys := wordBundles(`[
		{"id": 1, "simplified": "你", "pinyin": "nǐ", "translations": {"ru": "ты"}, "level": 9}
	]`)

	_, err := loadWords(fsys)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestLoadBankRejectsUnknownLevel(t *testing.T) {
	fsys := fstest.MapFS{
		"exercises.json": {Data: []byte(`[
			{"level": "7", "type": "translate", "question": "Привет!", "answer": "你好"}
		]`)},
	}

	_, err := loadExercises(fsys)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestLoadWordsFailsOnMissingBundle(t *testing.T) {
	fsys := fstest.MapFS{
		"hsk1.json": {Data: []byte("[]")},
	}

	_, err := loadWords(fsys)
	assert.Error(t, err)
}

func TestLoadBankAssignsStableKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"exercises.json": {Data: []byte(`[
			{"level": "1", "type": "fill-blank", "sentence": "我___学生。", "options": ["是", "不"], "answer": "是"},
			{"level": "1", "type": "translate", "question": "Привет!", "answer": "你好"}
		]`)},
	}

	first, err := loadExercises(fsys)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotEmpty(t, first[0].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)

	// Loading the same bundle again yields identical keys.
	second, err := loadExercises(fsys)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestLoadBankKeepsExplicitID(t *testing.T) {
	fsys := fstest.MapFS{
		"review-bank.json": {Data: []byte(`[
			{"id": "rb-7", "level": "2", "type": "multiple-choice", "question": "«Начинать»:", "options": ["开始", "告诉"], "answer": "开始"}
		]`)},
	}

	items, err := loadReviewBank(fsys)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rb-7", items[0].ID)
}

func TestExerciseKeyNormalizes(t *testing.T) {
	base := domain.BankExercise{Level: "1", Type: "translate", Question: "Привет!"}

	spaced := base
	spaced.Question = "  Привет!  "
	upper := base
	upper.Type = "TRANSLATE"

	assert.Equal(t, exerciseKey(base), exerciseKey(spaced))
	assert.Equal(t, exerciseKey(base), exerciseKey(upper))

	other := base
	other.Question = "Пока!"
	assert.NotEqual(t, exerciseKey(base), exerciseKey(other))
}

func TestEmbeddedBundlesComplete(t *testing.T) {
	fsys := EmbeddedBundles()

	words, err := loadWords(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, words)

	lessons, err := loadLessons(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, lessons)

	points, err := loadGrammar(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, points)

	readings, err := loadReadings(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, readings)

	exams, err := loadExams(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, exams)

	exercises, err := loadExercises(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, exercises)

	bank, err := loadReviewBank(fsys)
	require.NoError(t, err)
	assert.NotEmpty(t, bank)
}
