package storage

// SchemaVersion is the schema this build of the core expects. It is
// compared against the version persisted in PRAGMA user_version.
const SchemaVersion = 7

const schema = `
-- Content tables. Rows are immutable once seeded; complex fields are
-- stored as JSON documents in TEXT columns.
CREATE TABLE IF NOT EXISTS vocabulary (
    id INTEGER PRIMARY KEY,
    simplified TEXT NOT NULL,
    pinyin TEXT NOT NULL,
    translation_ru TEXT NOT NULL,
    translation_en TEXT,
    pos TEXT,
    level TEXT NOT NULL,
    audio_url TEXT
);
CREATE INDEX IF NOT EXISTS idx_vocabulary_level ON vocabulary(level);

CREATE TABLE IF NOT EXISTS lessons (
    id TEXT PRIMARY KEY,
    level TEXT NOT NULL,
    lesson_number INTEGER NOT NULL,
    title TEXT NOT NULL,
    new_words TEXT,
    grammar_points TEXT,
    dialogues TEXT,
    exercises TEXT
);
CREATE INDEX IF NOT EXISTS idx_lessons_level ON lessons(level);

CREATE TABLE IF NOT EXISTS grammar (
    id TEXT PRIMARY KEY,
    pattern TEXT NOT NULL,
    explanation TEXT,
    examples TEXT,
    level TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_grammar_level ON grammar(level);

CREATE TABLE IF NOT EXISTS readings (
    id TEXT PRIMARY KEY,
    level TEXT NOT NULL,
    title TEXT NOT NULL,
    title_pinyin TEXT,
    title_ru TEXT,
    content TEXT NOT NULL,
    pinyin TEXT,
    translation TEXT,
    questions TEXT
);
CREATE INDEX IF NOT EXISTS idx_readings_level ON readings(level);

CREATE TABLE IF NOT EXISTS exams (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    level TEXT NOT NULL,
    sections TEXT
);
CREATE INDEX IF NOT EXISTS idx_exams_level ON exams(level);

CREATE TABLE IF NOT EXISTS review_bank (
    id TEXT PRIMARY KEY,
    level TEXT NOT NULL,
    type TEXT NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_review_bank_level ON review_bank(level);
CREATE INDEX IF NOT EXISTS idx_review_bank_type ON review_bank(type);

CREATE TABLE IF NOT EXISTS exercises (
    id TEXT PRIMARY KEY,
    level TEXT NOT NULL,
    type TEXT NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exercises_level ON exercises(level);
CREATE INDEX IF NOT EXISTS idx_exercises_type ON exercises(type);

-- Spaced-repetition state, one row per reviewable item.
-- Timestamps are milliseconds since the Unix epoch; last_review_at 0
-- means the item has never been graded.
CREATE TABLE IF NOT EXISTS reviews (
    id TEXT PRIMARY KEY,
    item_type TEXT NOT NULL,
    item_ref TEXT NOT NULL,
    level TEXT NOT NULL,
    easiness REAL NOT NULL,
    interval INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    next_review_at INTEGER NOT NULL,
    last_review_at INTEGER NOT NULL DEFAULT 0,

    UNIQUE(item_type, item_ref)
);
CREATE INDEX IF NOT EXISTS idx_reviews_next_review_at ON reviews(next_review_at);
CREATE INDEX IF NOT EXISTS idx_reviews_item_ref ON reviews(item_ref);

-- Per-user aggregate, persisted as a single JSON document and always
-- replaced as a whole.
CREATE TABLE IF NOT EXISTS progress (
    user_id TEXT PRIMARY KEY,
    data TEXT NOT NULL
);
`

// contentTables are cleared by a destructive reseed so the seeders
// repopulate them on next read. The reviews table goes with them: its
// rows reference content keys that may not survive the reseed.
var contentTables = []string{
	"vocabulary", "lessons", "grammar", "readings",
	"exams", "review_bank", "exercises", "reviews",
}

// reseedPolicy states what opening at the current schema version does
// to data persisted under an older version.
type reseedPolicy struct {
	// Destructive clears every content table (and reviews) so the next
	// read re-populates from bundles.
	Destructive bool
	// WipeProgress additionally clears the user progress table. An
	// explicit per-transition decision, never inferred from the version
	// delta.
	WipeProgress bool
}

// reseedPolicies maps a persisted schema version to the policy applied
// when upgrading it to SchemaVersion. A version with no entry cannot be
// upgraded and fails the open. Version 0 (fresh database) is not listed:
// it only needs the tables created and the version stamped.
//
// Versions 1-6 predate the current content bundles. Their rows cannot
// be migrated in place, and the v7 vocabulary renumbering invalidates
// learned-word ids, so progress is wiped with them.
var reseedPolicies = map[int]reseedPolicy{
	1: {Destructive: true, WipeProgress: true},
	2: {Destructive: true, WipeProgress: true},
	3: {Destructive: true, WipeProgress: true},
	4: {Destructive: true, WipeProgress: true},
	5: {Destructive: true, WipeProgress: true},
	6: {Destructive: true, WipeProgress: true},
}
