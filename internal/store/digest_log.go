package store

import (
	"database/sql"
	"fmt"
	"time"
)

type DigestLogStore struct {
	db *sql.DB
}

func NewDigestLogStore(db *sql.DB) *DigestLogStore {
	return &DigestLogStore{db: db}
}

// RecordSent records that a scheduled digest went out for a slot (for dedup).
func (s *DigestLogStore) RecordSent(userID int64, kind, channel, slot string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO digest_log (user_id, kind, channel, slot) VALUES (?, ?, ?, ?)`,
		userID, kind, channel, slot,
	)
	if err != nil {
		return fmt.Errorf("record sent digest: %w", err)
	}
	return nil
}

// WasSent checks if a digest was already sent for the slot.
func (s *DigestLogStore) WasSent(userID int64, kind, channel, slot string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM digest_log WHERE user_id = ? AND kind = ? AND channel = ? AND slot = ?`,
		userID, kind, channel, slot,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent digest: %w", err)
	}
	return count > 0, nil
}

// Cleanup deletes digest_log rows older than the given time.
func (s *DigestLogStore) Cleanup(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM digest_log WHERE sent_at < ?`, before.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("cleanup digest log: %w", err)
	}
	return result.RowsAffected()
}
