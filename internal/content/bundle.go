package content

import (
	"crypto/sha256"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lingtao/hsktrainer/internal/domain"
	"github.com/lingtao/hsktrainer/internal/storage"
)

//go:embed all:bundles
var bundleFiles embed.FS

// EmbeddedBundles returns the content bundles compiled into the binary.
func EmbeddedBundles() fs.FS {
	sub, err := fs.Sub(bundleFiles, "bundles")
	if err != nil {
		// The bundles directory is part of the build; its absence is a
		// broken binary, not a runtime condition.
		panic(err)
	}
	return sub
}

var validate = validator.New()

// decodeBundle reads one JSON bundle file into out. Shape problems are
// validation failures: a bundle either parses into well-typed records
// or the seed is rejected before any write.
func decodeBundle(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read bundle %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: bundle %s: %v", storage.ErrValidation, name, err)
	}
	return nil
}

func validateRecord(bundle string, rec any) error {
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("%w: bundle %s: %v", storage.ErrValidation, bundle, err)
	}
	return nil
}

// loadWords decodes the per-level vocabulary bundles in level order,
// tagging each record with its bundle level when the record itself
// carries none.
func loadWords(fsys fs.FS) ([]domain.Word, error) {
	var words []domain.Word
	for _, level := range domain.Levels {
		name := fmt.Sprintf("hsk%s.json", level)
		var bundle []domain.Word
		if err := decodeBundle(fsys, name, &bundle); err != nil {
			return nil, err
		}
		for _, w := range bundle {
			if w.Level == "" {
				w.Level = level
			}
			if err := validateRecord(name, w); err != nil {
				return nil, err
			}
			words = append(words, w)
		}
	}
	return words, nil
}

// loadLessons decodes the per-level lesson bundles in level order.
func loadLessons(fsys fs.FS) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	for _, level := range domain.Levels {
		name := fmt.Sprintf("hsk%s-lessons.json", level)
		var bundle []domain.Lesson
		if err := decodeBundle(fsys, name, &bundle); err != nil {
			return nil, err
		}
		for _, l := range bundle {
			if l.Level == "" {
				l.Level = level
			}
			if err := validateRecord(name, l); err != nil {
				return nil, err
			}
			lessons = append(lessons, l)
		}
	}
	return lessons, nil
}

// loadGrammar decodes the per-level grammar bundles. Grammar records do
// not carry a level of their own; the bundle decides it.
func loadGrammar(fsys fs.FS) ([]domain.GrammarPoint, error) {
	var points []domain.GrammarPoint
	for _, level := range domain.Levels {
		name := fmt.Sprintf("grammar%s.json", level)
		var bundle []domain.GrammarPoint
		if err := decodeBundle(fsys, name, &bundle); err != nil {
			return nil, err
		}
		for _, g := range bundle {
			if g.Level == "" {
				g.Level = level
			}
			if err := validateRecord(name, g); err != nil {
				return nil, err
			}
			points = append(points, g)
		}
	}
	return points, nil
}

// loadReadings decodes the single reading bundle; reading records carry
// their own level.
func loadReadings(fsys fs.FS) ([]domain.Reading, error) {
	const name = "hsk-reading.json"
	var readings []domain.Reading
	if err := decodeBundle(fsys, name, &readings); err != nil {
		return nil, err
	}
	for _, r := range readings {
		if err := validateRecord(name, r); err != nil {
			return nil, err
		}
	}
	return readings, nil
}

// loadExams decodes the per-level exam bundles in level order.
func loadExams(fsys fs.FS) ([]domain.Exam, error) {
	var exams []domain.Exam
	for _, level := range domain.Levels {
		name := fmt.Sprintf("hsk%s-exam.json", level)
		var bundle []domain.Exam
		if err := decodeBundle(fsys, name, &bundle); err != nil {
			return nil, err
		}
		for _, e := range bundle {
			if e.Level == "" {
				e.Level = level
			}
			if err := validateRecord(name, e); err != nil {
				return nil, err
			}
			exams = append(exams, e)
		}
	}
	return exams, nil
}

func loadBank(fsys fs.FS, name string) ([]domain.BankExercise, error) {
	var items []domain.BankExercise
	if err := decodeBundle(fsys, name, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = exerciseKey(items[i])
		}
		if err := validateRecord(name, items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// loadExercises decodes the standalone exercise bundle.
func loadExercises(fsys fs.FS) ([]domain.BankExercise, error) {
	return loadBank(fsys, "exercises.json")
}

// loadReviewBank decodes the review bank bundle.
func loadReviewBank(fsys fs.FS) ([]domain.BankExercise, error) {
	return loadBank(fsys, "review-bank.json")
}

// exerciseKey derives a stable id from an exercise's normalized
// content. Reseeding the same bundle therefore yields the same keys,
// and review records pointing at bank exercises survive a reseed.
func exerciseKey(e domain.BankExercise) string {
	normalize := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := []string{
		string(e.Level),
		normalize(e.Type),
		normalize(e.Question),
		normalize(e.Sentence),
		normalize(strings.Join(e.Words, "\n")),
		normalize(strings.Join(e.Options, "\n")),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return fmt.Sprintf("%x", sum[:8])
}
