package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "hsktrainer.db", cfg.DBPath)
	assert.Equal(t, "default", cfg.UserID)
	assert.Equal(t, 10, cfg.Rewards.WordXP)
	assert.Equal(t, 50, cfg.Rewards.LessonXP)
	assert.Equal(t, 5, cfg.Rewards.PracticeXP)
	require.Len(t, cfg.Achievements, 3)
	assert.Equal(t, "first10", cfg.Achievements[0].ID)
	assert.Equal(t, 10, cfg.Achievements[0].MinLearnedWords)
	assert.Equal(t, 3, cfg.Achievements[1].MinStreak)
	assert.Equal(t, 50, cfg.Achievements[2].MinLearnedWords)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /data/hsk.db
rewards:
  word_xp: 25
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/data/hsk.db", cfg.DBPath)
	assert.Equal(t, 25, cfg.Rewards.WordXP)
	// Values absent from the file keep their defaults.
	assert.Equal(t, 50, cfg.Rewards.LessonXP)
	assert.Equal(t, "default", cfg.UserID)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hsktrainer.db", cfg.DBPath)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: from-file.db\n"), 0o644))

	t.Setenv("HSK_DB_PATH", "from-env.db")
	t.Setenv("HSK_REWARDS_WORD_XP", "15")
	t.Setenv("HSK_CONTENT_BUNDLES_DIR", "/srv/bundles")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, 15, cfg.Rewards.WordXP)
	assert.Equal(t, "/srv/bundles", cfg.Content.BundlesDir)
}

// cliFlags mirrors the flag set the binary registers.
func cliFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("hsktrainer", pflag.ContinueOnError)
	flags.String("config", "hsktrainer.yaml", "Path to the YAML config file")
	flags.String("db_path", "hsktrainer.db", "Path to the SQLite database file")
	flags.Bool("seed", false, "Seed every empty content table and exit")
	flags.Bool("due", false, "List review items that are due now")
	flags.Bool("stats", false, "Print the progress summary")
	return flags
}

func TestLoadWithUnsetCLIFlags(t *testing.T) {
	// No file, no environment, no flags given on the command line: the
	// flag defaults must not shadow the built-in configuration.
	flags := cliFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "hsktrainer.db", cfg.DBPath)
	assert.Equal(t, "default", cfg.UserID)
}

func TestUnsetFlagDoesNotShadowEnvironment(t *testing.T) {
	t.Setenv("HSK_DB_PATH", "from-env.db")

	flags := cliFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath)
}

func TestFlagsOverrideEverything(t *testing.T) {
	t.Setenv("HSK_DB_PATH", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db_path", "", "database path")
	require.NoError(t, flags.Parse([]string{"--db_path", "from-flag.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.DBPath)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`db_path: ""`), 0o644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}
