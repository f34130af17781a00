package domain

import (
	"encoding/json"
	"strings"
)

// Level is an HSK proficiency tier. Content and review items are
// partitioned by level for secondary lookup.
type Level string

const (
	Level1 Level = "1"
	Level2 Level = "2"
	Level3 Level = "3"
	Level4 Level = "4"
	Level5 Level = "5"
)

// Levels lists every tier in ascending order.
var Levels = []Level{Level1, Level2, Level3, Level4, Level5}

// UnmarshalJSON accepts both "1" and 1; older content bundles carry the
// level as a bare number.
func (l *Level) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	*l = Level(s)
	return nil
}

// Translation holds the word translations. Russian is the primary
// language of the bundled content, English is optional.
type Translation struct {
	RU string `json:"ru" validate:"required"`
	EN string `json:"en,omitempty"`
}

// Word is a single vocabulary entry. Immutable once seeded.
type Word struct {
	ID          int         `json:"id" validate:"required,gt=0"`
	Simplified  string      `json:"simplified" validate:"required"`
	Pinyin      string      `json:"pinyin" validate:"required"`
	Translation Translation `json:"translations"`
	POS         []string    `json:"pos"`
	Level       Level       `json:"level" validate:"oneof=1 2 3 4 5"`
	AudioURL    string      `json:"audioUrl,omitempty"`
}

// GrammarExample is one usage example for a grammar point.
type GrammarExample struct {
	Chinese     string `json:"chinese"`
	Pinyin      string `json:"pinyin,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// GrammarPoint describes one grammar pattern with examples.
type GrammarPoint struct {
	ID          string           `json:"id" validate:"required"`
	Pattern     string           `json:"pattern" validate:"required"`
	Explanation string           `json:"explanation"`
	Examples    []GrammarExample `json:"examples"`
	Level       Level            `json:"level" validate:"oneof=1 2 3 4 5"`
}

// DialogueLine is one utterance inside a lesson dialogue.
type DialogueLine struct {
	Speaker     string `json:"speaker"`
	Hanzi       string `json:"hanzi"`
	Translation string `json:"translation"`
}

// Dialogue is a short conversation attached to a lesson.
type Dialogue struct {
	ID    string         `json:"id"`
	Lines []DialogueLine `json:"lines"`
}

// LessonExercise is an inline exercise embedded in a lesson.
type LessonExercise struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Lesson is a curriculum unit. Lesson ids follow the "level-number"
// convention ("1-1", "1-2", ...), which the progress tracker relies on
// to unlock the next lesson in the same tier.
type Lesson struct {
	ID            string           `json:"id" validate:"required"`
	Level         Level            `json:"hskLevel" validate:"oneof=1 2 3 4 5"`
	LessonNumber  int              `json:"lessonNumber" validate:"gte=0"`
	Title         string           `json:"title" validate:"required"`
	NewWords      []int            `json:"newWords"`
	GrammarPoints []string         `json:"grammarPoints"`
	Dialogues     []Dialogue       `json:"dialogues,omitempty"`
	Exercises     []LessonExercise `json:"exercises,omitempty"`
}

// ReadingOption is one answer choice for a reading question, given in
// hanzi with pinyin and translation.
type ReadingOption struct {
	Chinese string `json:"chinese"`
	Pinyin  string `json:"pinyin,omitempty"`
	RU      string `json:"ru,omitempty"`
}

// ReadingQuestion is a comprehension question over a reading text.
// Answer is the index into Options.
type ReadingQuestion struct {
	Question ReadingOption   `json:"question"`
	Options  []ReadingOption `json:"options"`
	Answer   int             `json:"answer"`
}

// Reading is a graded reading text with comprehension questions.
type Reading struct {
	ID          string            `json:"id" validate:"required"`
	Level       Level             `json:"level" validate:"oneof=1 2 3 4 5"`
	Title       string            `json:"title" validate:"required"`
	TitlePinyin string            `json:"title_pinyin,omitempty"`
	TitleRU     string            `json:"title_ru,omitempty"`
	Content     string            `json:"content" validate:"required"`
	Pinyin      string            `json:"pinyin,omitempty"`
	Translation string            `json:"translation,omitempty"`
	Questions   []ReadingQuestion `json:"questions"`
}

// ExamSection is one named block of questions inside an exam. The
// question payloads are heterogeneous and kept as raw JSON documents;
// the core never interprets them.
type ExamSection struct {
	Name      string            `json:"name"`
	Questions []json.RawMessage `json:"questions"`
}

// Exam is a mock HSK exam for one level.
type Exam struct {
	ID       string        `json:"id" validate:"required"`
	Title    string        `json:"title" validate:"required"`
	Level    Level         `json:"level" validate:"oneof=1 2 3 4 5"`
	Sections []ExamSection `json:"sections"`
}

// BankExercise is a standalone practice exercise. The same shape backs
// both the exercises table and the review bank. The id is derived from
// a content hash at seed time, so reseeding produces identical keys.
type BankExercise struct {
	ID           string      `json:"id,omitempty"`
	Level        Level       `json:"level" validate:"oneof=1 2 3 4 5"`
	Type         string      `json:"type" validate:"required"`
	Question     string      `json:"question,omitempty"`
	Sentence     string      `json:"sentence,omitempty"`
	Options      []string    `json:"options,omitempty"`
	Answer       string      `json:"answer,omitempty"`
	Words        []string    `json:"words,omitempty"`
	CorrectOrder []int       `json:"correctOrder,omitempty"`
	Pairs        []MatchPair `json:"pairs,omitempty"`
	Pinyin       string      `json:"pinyin,omitempty"`
}

// MatchPair is a hanzi/pinyin pair for matching exercises.
type MatchPair struct {
	Chinese string `json:"chinese"`
	Pinyin  string `json:"pinyin"`
}
