package storage

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Store wraps the SQL database connection. It is constructed once at
// process start with Open, handed by reference to every component, and
// closed at shutdown. There is no ambient global handle.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path, ensures the schema
// exists and runs any pending migration. It is idempotent: opening an
// already-current store is a no-op beyond the connection itself.
//
// Concurrent opens of the same file are safe. Migration work runs in a
// single immediate transaction, so racing callers serialize on the
// SQLite write lock and the losers observe an already-stamped version.
func Open(path string) (*Store, error) {
	// Every transaction here writes, so take the write lock up front
	// (immediate) and wait on it instead of failing with SQLITE_BUSY
	// when two opens race.
	dsn := path + "?_txlock=immediate&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect %s: %v", ErrStorageUnavailable, path, err)
	}

	s := &Store{conn: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// migrate brings the on-disk schema to SchemaVersion. Tables and
// indexes are created if absent; an upgrade from an older version is
// resolved through the reseedPolicies table. All data-changing work and
// the version stamp commit atomically.
func (s *Store) migrate() error {
	var current int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("%w: read schema version: %v", ErrMigrationFailed, err)
	}

	if current > SchemaVersion {
		return fmt.Errorf("%w: store is at schema v%d, this build supports v%d",
			ErrMigrationFailed, current, SchemaVersion)
	}

	// Table creation is idempotent and needed on every path, including
	// re-opens at the current version where a prior partial create may
	// have been interrupted before the version stamp.
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("%w: apply schema: %v", ErrMigrationFailed, err)
	}

	if current == SchemaVersion {
		return nil
	}

	var policy reseedPolicy
	if current != 0 {
		p, ok := reseedPolicies[current]
		if !ok {
			return fmt.Errorf("%w: no upgrade path from schema v%d to v%d",
				ErrMigrationFailed, current, SchemaVersion)
		}
		policy = p
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrMigrationFailed, err)
	}
	defer tx.Rollback()

	if policy.Destructive {
		slog.Info("Running destructive reseed",
			"from_version", current,
			"to_version", SchemaVersion,
			"wipe_progress", policy.WipeProgress,
		)
		for _, table := range contentTables {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("%w: clear %s: %v", ErrMigrationFailed, table, err)
			}
		}
		if policy.WipeProgress {
			if _, err := tx.Exec("DELETE FROM progress"); err != nil {
				return fmt.Errorf("%w: clear progress: %v", ErrMigrationFailed, err)
			}
		}
	}

	// PRAGMA does not support bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("%w: stamp schema version: %v", ErrMigrationFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrMigrationFailed, err)
	}

	slog.Info("Schema migrated", "from_version", current, "to_version", SchemaVersion)
	return nil
}

// SchemaUserVersion reports the schema version persisted in the store.
func (s *Store) SchemaUserVersion() (int, error) {
	var v int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
