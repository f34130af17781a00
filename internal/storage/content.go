package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lingtao/hsktrainer/internal/domain"
)

// Content rows keep their scalar fields in columns and everything
// nested (translations, dialogues, exam sections) as JSON documents.
// Seed* methods replace a table wholesale inside one transaction, so a
// failed seed leaves the table untouched for the next attempt.

func marshalField(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode field: %w", err)
	}
	return string(b), nil
}

func unmarshalField(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode field: %w", err)
	}
	return nil
}

// countRows reports how many rows a content table holds. The table name
// is always one of the fixed schema tables, never caller input.
func (s *Store) countRows(table string) (int, error) {
	var n int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// CountWords reports the number of seeded vocabulary rows.
func (s *Store) CountWords() (int, error) { return s.countRows("vocabulary") }

// CountLessons reports the number of seeded lesson rows.
func (s *Store) CountLessons() (int, error) { return s.countRows("lessons") }

// CountGrammar reports the number of seeded grammar rows.
func (s *Store) CountGrammar() (int, error) { return s.countRows("grammar") }

// CountReadings reports the number of seeded reading rows.
func (s *Store) CountReadings() (int, error) { return s.countRows("readings") }

// CountExams reports the number of seeded exam rows.
func (s *Store) CountExams() (int, error) { return s.countRows("exams") }

// CountExercises reports the number of seeded exercise rows.
func (s *Store) CountExercises() (int, error) { return s.countRows("exercises") }

// CountReviewBank reports the number of seeded review bank rows.
func (s *Store) CountReviewBank() (int, error) { return s.countRows("review_bank") }

// SeedWords replaces the vocabulary table with the given records.
func (s *Store) SeedWords(words []domain.Word) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: vocabulary: begin: %v", ErrSeedFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vocabulary"); err != nil {
		return fmt.Errorf("%w: vocabulary: clear: %v", ErrSeedFailed, err)
	}
	for _, w := range words {
		pos, err := marshalField(w.POS)
		if err != nil {
			return fmt.Errorf("%w: vocabulary %d: %v", ErrSeedFailed, w.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO vocabulary (id, simplified, pinyin, translation_ru, translation_en, pos, level, audio_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, w.ID, w.Simplified, w.Pinyin, w.Translation.RU, w.Translation.EN, pos, string(w.Level), w.AudioURL)
		if err != nil {
			return fmt.Errorf("%w: vocabulary %d: %v", ErrSeedFailed, w.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: vocabulary: commit: %v", ErrSeedFailed, err)
	}
	return nil
}

func scanWord(rows *sql.Rows) (domain.Word, error) {
	var (
		w     domain.Word
		en    sql.NullString
		audio sql.NullString
		pos   string
		level string
	)
	err := rows.Scan(&w.ID, &w.Simplified, &w.Pinyin, &w.Translation.RU, &en, &pos, &level, &audio)
	if err != nil {
		return w, err
	}
	w.Translation.EN = en.String
	w.AudioURL = audio.String
	w.Level = domain.Level(level)
	if err := unmarshalField(pos, &w.POS); err != nil {
		return w, err
	}
	return w, nil
}

const selectWords = `
	SELECT id, simplified, pinyin, translation_ru, translation_en, pos, level, audio_url
	FROM vocabulary
`

func (s *Store) queryWords(where string, args ...any) ([]domain.Word, error) {
	rows, err := s.conn.Query(selectWords+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary: %w", err)
	}
	defer rows.Close()

	var words []domain.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Words returns every vocabulary row ordered by id.
func (s *Store) Words() ([]domain.Word, error) {
	return s.queryWords(" ORDER BY id")
}

// WordsByLevel returns the vocabulary rows for one level ordered by id.
func (s *Store) WordsByLevel(level domain.Level) ([]domain.Word, error) {
	return s.queryWords(" WHERE level = ? ORDER BY id", string(level))
}

// WordByID returns a single word or ErrWordNotFound.
func (s *Store) WordByID(id int) (*domain.Word, error) {
	words, err := s.queryWords(" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrWordNotFound
	}
	return &words[0], nil
}

// SeedLessons replaces the lessons table with the given records.
func (s *Store) SeedLessons(lessons []domain.Lesson) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: lessons: begin: %v", ErrSeedFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM lessons"); err != nil {
		return fmt.Errorf("%w: lessons: clear: %v", ErrSeedFailed, err)
	}
	for _, l := range lessons {
		newWords, err := marshalField(l.NewWords)
		if err != nil {
			return fmt.Errorf("%w: lesson %s: %v", ErrSeedFailed, l.ID, err)
		}
		grammarPoints, err := marshalField(l.GrammarPoints)
		if err != nil {
			return fmt.Errorf("%w: lesson %s: %v", ErrSeedFailed, l.ID, err)
		}
		dialogues, err := marshalField(l.Dialogues)
		if err != nil {
			return fmt.Errorf("%w: lesson %s: %v", ErrSeedFailed, l.ID, err)
		}
		exercises, err := marshalField(l.Exercises)
		if err != nil {
			return fmt.Errorf("%w: lesson %s: %v", ErrSeedFailed, l.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO lessons (id, level, lesson_number, title, new_words, grammar_points, dialogues, exercises)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, string(l.Level), l.LessonNumber, l.Title, newWords, grammarPoints, dialogues, exercises)
		if err != nil {
			return fmt.Errorf("%w: lesson %s: %v", ErrSeedFailed, l.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: lessons: commit: %v", ErrSeedFailed, err)
	}
	return nil
}

const selectLessons = `
	SELECT id, level, lesson_number, title, new_words, grammar_points, dialogues, exercises
	FROM lessons
`

func (s *Store) queryLessons(where string, args ...any) ([]domain.Lesson, error) {
	rows, err := s.conn.Query(selectLessons+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		var (
			l                                       domain.Lesson
			level                                   string
			newWords, grammarPoints, dialogues, exs string
		)
		err := rows.Scan(&l.ID, &level, &l.LessonNumber, &l.Title, &newWords, &grammarPoints, &dialogues, &exs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson row: %w", err)
		}
		l.Level = domain.Level(level)
		if err := unmarshalField(newWords, &l.NewWords); err != nil {
			return nil, err
		}
		if err := unmarshalField(grammarPoints, &l.GrammarPoints); err != nil {
			return nil, err
		}
		if err := unmarshalField(dialogues, &l.Dialogues); err != nil {
			return nil, err
		}
		if err := unmarshalField(exs, &l.Exercises); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// Lessons returns every lesson ordered by level then lesson number.
func (s *Store) Lessons() ([]domain.Lesson, error) {
	return s.queryLessons(" ORDER BY level, lesson_number")
}

// LessonsByLevel returns the lessons for one level ordered by number.
func (s *Store) LessonsByLevel(level domain.Level) ([]domain.Lesson, error) {
	return s.queryLessons(" WHERE level = ? ORDER BY lesson_number", string(level))
}

// LessonByID returns a single lesson or ErrLessonNotFound.
func (s *Store) LessonByID(id string) (*domain.Lesson, error) {
	lessons, err := s.queryLessons(" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, ErrLessonNotFound
	}
	return &lessons[0], nil
}

// SeedGrammar replaces the grammar table with the given records.
func (s *Store) SeedGrammar(points []domain.GrammarPoint) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: grammar: begin: %v", ErrSeedFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM grammar"); err != nil {
		return fmt.Errorf("%w: grammar: clear: %v", ErrSeedFailed, err)
	}
	for _, g := range points {
		examples, err := marshalField(g.Examples)
		if err != nil {
			return fmt.Errorf("%w: grammar %s: %v", ErrSeedFailed, g.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO grammar (id, pattern, explanation, examples, level)
			VALUES (?, ?, ?, ?, ?)
		`, g.ID, g.Pattern, g.Explanation, examples, string(g.Level))
		if err != nil {
			return fmt.Errorf("%w: grammar %s: %v", ErrSeedFailed, g.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: grammar: commit: %v", ErrSeedFailed, err)
	}
	return nil
}

const selectGrammar = `
	SELECT id, pattern, explanation, examples, level
	FROM grammar
`

func (s *Store) queryGrammar(where string, args ...any) ([]domain.GrammarPoint, error) {
	rows, err := s.conn.Query(selectGrammar+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grammar: %w", err)
	}
	defer rows.Close()

	var points []domain.GrammarPoint
	for rows.Next() {
		var (
			g        domain.GrammarPoint
			level    string
			examples string
		)
		if err := rows.Scan(&g.ID, &g.Pattern, &g.Explanation, &examples, &level); err != nil {
			return nil, fmt.Errorf("failed to scan grammar row: %w", err)
		}
		g.Level = domain.Level(level)
		if err := unmarshalField(examples, &g.Examples); err != nil {
			return nil, err
		}
		points = append(points, g)
	}
	return points, rows.Err()
}

// GrammarPoints returns every grammar row ordered by level then id.
func (s *Store) GrammarPoints() ([]domain.GrammarPoint, error) {
	return s.queryGrammar(" ORDER BY level, id")
}

// GrammarByLevel returns the grammar rows for one level ordered by id.
func (s *Store) GrammarByLevel(level domain.Level) ([]domain.GrammarPoint, error) {
	return s.queryGrammar(" WHERE level = ? ORDER BY id", string(level))
}

// GrammarByID returns a single grammar point or ErrGrammarNotFound.
func (s *Store) GrammarByID(id string) (*domain.GrammarPoint, error) {
	points, err := s.queryGrammar(" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrGrammarNotFound
	}
	return &points[0], nil
}

// SeedReadings replaces the readings table with the given records.
func (s *Store) SeedReadings(readings []domain.Reading) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: readings: begin: %v", ErrSeedFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM readings"); err != nil {
		return fmt.Errorf("%w: readings: clear: %v", ErrSeedFailed, err)
	}
	for _, r := range readings {
		questions, err := marshalField(r.Questions)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrSeedFailed, r.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO readings (id, level, title, title_pinyin, title_ru, content, pinyin, translation, questions)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, string(r.Level), r.Title, r.TitlePinyin, r.TitleRU, r.Content, r.Pinyin, r.Translation, questions)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrSeedFailed, r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: readings: commit: %v", ErrSeedFailed, err)
	}
	return nil
}

const selectReadings = `
	SELECT id, level, title, title_pinyin, title_ru, content, pinyin, translation, questions
	FROM readings
`

func (s *Store) queryReadings(where string, args ...any) ([]domain.Reading, error) {
	rows, err := s.conn.Query(selectReadings+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		var (
			r         domain.Reading
			level     string
			questions string
		)
		err := rows.Scan(&r.ID, &level, &r.Title, &r.TitlePinyin, &r.TitleRU, &r.Content, &r.Pinyin, &r.Translation, &questions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading row: %w", err)
		}
		r.Level = domain.Level(level)
		if err := unmarshalField(questions, &r.Questions); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// Readings returns every reading ordered by level then id.
func (s *Store) Readings() ([]domain.Reading, error) {
	return s.queryReadings(" ORDER BY level, id")
}

// ReadingsByLevel returns the readings for one level ordered by id.
func (s *Store) ReadingsByLevel(level domain.Level) ([]domain.Reading, error) {
	return s.queryReadings(" WHERE level = ? ORDER BY id", string(level))
}

// ReadingByID returns a single reading or ErrReadingNotFound.
func (s *Store) ReadingByID(id string) (*domain.Reading, error) {
	readings, err := s.queryReadings(" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrReadingNotFound
	}
	return &readings[0], nil
}

// SeedExams replaces the exams table with the given records.
func (s *Store) SeedExams(exams []domain.Exam) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: exams: begin: %v", ErrSeedFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM exams"); err != nil {
		return fmt.Errorf("%w: exams: clear: %v", ErrSeedFailed, err)
	}
	for _, e := range exams {
		sections, err := marshalField(e.Sections)
		if err != nil {
			return fmt.Errorf("%w: exam %s: %v", ErrSeedFailed, e.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO exams (id, title, level, sections)
			VALUES (?, ?, ?, ?)
		`, e.ID, e.Title, string(e.Level), sections)
		if err != nil {
			return fmt.Errorf("%w: exam %s: %v", ErrSeedFailed, e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: exams: commit: %v", ErrSeedFailed, err)
	}
	return nil
}

const selectExams = `
	SELECT id, title, level, sections
	FROM exams
`

func (s *Store) queryExams(where string, args ...any) ([]domain.Exam, error) {
	rows, err := s.conn.Query(selectExams+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	var exams []domain.Exam
	for rows.Next() {
		var (
			e        domain.Exam
			level    string
			sections string
		)
		if err := rows.Scan(&e.ID, &e.Title, &level, &sections); err != nil {
			return nil, fmt.Errorf("failed to scan exam row: %w", err)
		}
		e.Level = domain.Level(level)
		if err := unmarshalField(sections, &e.Sections); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Exams returns every exam ordered by level then id.
func (s *Store) Exams() ([]domain.Exam, error) {
	return s.queryExams(" ORDER BY level, id")
}

// ExamsByLevel returns the exams for one level ordered by id.
func (s *Store) ExamsByLevel(level domain.Level) ([]domain.Exam, error) {
	return s.queryExams(" WHERE level = ? ORDER BY id", string(level))
}

// ExamByID returns a single exam or ErrExamNotFound.
func (s *Store) ExamByID(id string) (*domain.Exam, error) {
	exams, err := s.queryExams(" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(exams) == 0 {
		return nil, ErrExamNotFound
	}
	return &exams[0], nil
}

// seedBank replaces an exercise bank table (exercises or review_bank).
// Both tables share the same layout: scalar id/level/type columns plus
// the full exercise as a JSON payload.
func (s *Store) seedBank(table string, items []domain.BankExercise) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: %s: begin: %v", ErrSeedFailed, table, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("%w: %s: clear: %v", ErrSeedFailed, table, err)
	}
	for _, item := range items {
		payload, err := marshalField(item)
		if err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrSeedFailed, table, item.ID, err)
		}
		_, err = tx.Exec(
			"INSERT INTO "+table+" (id, level, type, payload) VALUES (?, ?, ?, ?)",
			item.ID, string(item.Level), item.Type, payload,
		)
		if err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrSeedFailed, table, item.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: commit: %v", ErrSeedFailed, table, err)
	}
	return nil
}

// SeedExercises replaces the exercises table with the given records.
func (s *Store) SeedExercises(items []domain.BankExercise) error {
	return s.seedBank("exercises", items)
}

// SeedReviewBank replaces the review_bank table with the given records.
func (s *Store) SeedReviewBank(items []domain.BankExercise) error {
	return s.seedBank("review_bank", items)
}

func (s *Store) queryBank(table, where string, args ...any) ([]domain.BankExercise, error) {
	rows, err := s.conn.Query("SELECT payload FROM "+table+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var items []domain.BankExercise
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		var item domain.BankExercise
		if err := unmarshalField(payload, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Exercises returns every standalone exercise ordered by level then id.
func (s *Store) Exercises() ([]domain.BankExercise, error) {
	return s.queryBank("exercises", " ORDER BY level, id")
}

// ExercisesByLevel returns the exercises for one level ordered by id.
func (s *Store) ExercisesByLevel(level domain.Level) ([]domain.BankExercise, error) {
	return s.queryBank("exercises", " WHERE level = ? ORDER BY id", string(level))
}

// ExercisesByType returns the exercises of one type ordered by id.
func (s *Store) ExercisesByType(exerciseType string) ([]domain.BankExercise, error) {
	return s.queryBank("exercises", " WHERE type = ? ORDER BY id", exerciseType)
}

// ExerciseByID returns a single exercise or ErrExerciseNotFound.
func (s *Store) ExerciseByID(id string) (*domain.BankExercise, error) {
	items, err := s.queryBank("exercises", " WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrExerciseNotFound
	}
	return &items[0], nil
}

// ReviewBank returns every review bank item ordered by level then id.
func (s *Store) ReviewBank() ([]domain.BankExercise, error) {
	return s.queryBank("review_bank", " ORDER BY level, id")
}

// ReviewBankByLevel returns the review bank items for one level.
func (s *Store) ReviewBankByLevel(level domain.Level) ([]domain.BankExercise, error) {
	return s.queryBank("review_bank", " WHERE level = ? ORDER BY id", string(level))
}

// ReviewBankByType returns the review bank items of one type.
func (s *Store) ReviewBankByType(exerciseType string) ([]domain.BankExercise, error) {
	return s.queryBank("review_bank", " WHERE type = ? ORDER BY id", exerciseType)
}
