package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the full runtime configuration. Values load in order of
// precedence: defaults, YAML file, HSK_* environment variables, flags.
type Config struct {
	DBPath       string            `koanf:"db_path" validate:"required"`
	UserID       string            `koanf:"user_id" validate:"required"`
	Content      ContentConfig     `koanf:"content"`
	Rewards      RewardsConfig     `koanf:"rewards"`
	Achievements []AchievementRule `koanf:"achievements" validate:"dive"`
}

// ContentConfig controls where content bundles come from. When
// BundlesRepo is set, the bundles are synced from that git repository
// into BundlesDir and seeded from there; otherwise the embedded bundles
// are used.
type ContentConfig struct {
	BundlesRepo string `koanf:"bundles_repo"`
	BundlesDir  string `koanf:"bundles_dir"`
}

// RewardsConfig holds the XP grants. Tunable so balancing changes never
// touch the progress logic.
type RewardsConfig struct {
	WordXP     int `koanf:"word_xp" validate:"gte=0"`
	LessonXP   int `koanf:"lesson_xp" validate:"gte=0"`
	PracticeXP int `koanf:"practice_xp" validate:"gte=0"`
}

// AchievementRule is one achievement with its unlock thresholds. A rule
// unlocks when every non-zero threshold is met.
type AchievementRule struct {
	ID              string `koanf:"id" validate:"required"`
	Icon            string `koanf:"icon"`
	Title           string `koanf:"title" validate:"required"`
	Description     string `koanf:"description"`
	MinLearnedWords int    `koanf:"min_learned_words" validate:"gte=0"`
	MinStreak       int    `koanf:"min_streak" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: "hsktrainer.db",
		UserID: "default",
		Content: ContentConfig{
			BundlesDir: "bundles",
		},
		Rewards: RewardsConfig{
			WordXP:     10,
			LessonXP:   50,
			PracticeXP: 5,
		},
		Achievements: []AchievementRule{
			{
				ID:              "first10",
				Icon:            "🎓",
				Title:           "Первый шаг",
				Description:     "Выучить 10 слов",
				MinLearnedWords: 10,
			},
			{
				ID:          "streak3",
				Icon:        "🔥",
				Title:       "Огонёк",
				Description: "Заниматься 3 дня подряд",
				MinStreak:   3,
			},
			{
				ID:              "words50",
				Icon:            "🏆",
				Title:           "Лингвист",
				Description:     "Выучить 50 слов",
				MinLearnedWords: 50,
			},
		},
	}
}

// Load builds the configuration from the optional YAML file at path,
// HSK_* environment variables and the given flag set, layered over the
// defaults. Pass a nil flag set to skip flag loading.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	// HSK_DB_PATH -> db_path, HSK_CONTENT_BUNDLES_REPO -> content.bundles_repo
	err := k.Load(env.Provider("HSK_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "HSK_"))
		for _, prefix := range []string{"content_", "rewards_"} {
			if strings.HasPrefix(key, prefix) {
				return strings.TrimSuffix(prefix, "_") + "." + strings.TrimPrefix(key, prefix)
			}
		}
		return key
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
