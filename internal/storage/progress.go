package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lingtao/hsktrainer/internal/domain"
)

// FindProgress loads the aggregate for a user. Returns (nil, nil) when
// no record has been persisted yet; the tracker creates the default.
func (s *Store) FindProgress(userID string) (*domain.Progress, error) {
	var data string
	err := s.conn.QueryRow("SELECT data FROM progress WHERE user_id = ?", userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load progress for %s: %w", userID, err)
	}

	var p domain.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode progress for %s: %w", userID, err)
	}
	return &p, nil
}

// PutProgress persists the aggregate as one JSON document, replacing
// any previous row for the user. Always a full-document write; partial
// field patches would lose updates under concurrent mutators.
func (s *Store) PutProgress(p *domain.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress for %s: %w", p.UserID, err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO progress (user_id, data) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data
	`, p.UserID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save progress for %s: %w", p.UserID, err)
	}
	return nil
}
