package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/dayboard/internal/model"
)

// JournalStore holds the mood and study/work logs that feed the daily stats.
type JournalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

func (s *JournalStore) CreateMood(m model.MoodEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO mood_entries (user_id, date, score, energy, stress, emotion) VALUES (?, ?, ?, ?, ?, ?)`,
		m.UserID, m.Date, m.Score, m.Energy, nullInt(m.Stress), m.Emotion,
	)
	if err != nil {
		return 0, fmt.Errorf("insert mood entry: %w", err)
	}
	return result.LastInsertId()
}

func (s *JournalStore) CreateStudySession(ss model.StudySession) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO study_sessions (user_id, date, area, topic, duration, focus) VALUES (?, ?, ?, ?, ?, ?)`,
		ss.UserID, ss.Date, ss.Area, ss.Topic, ss.Duration, nullInt(ss.Focus),
	)
	if err != nil {
		return 0, fmt.Errorf("insert study session: %w", err)
	}
	return result.LastInsertId()
}

func (s *JournalStore) ListMoods(userID int64, date string) ([]model.MoodEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, date, score, energy, stress, emotion, created_at
		 FROM mood_entries WHERE user_id = ? AND date = ? ORDER BY id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []model.MoodEntry
	for rows.Next() {
		var m model.MoodEntry
		var stress sql.NullInt64
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.Score, &m.Energy, &stress, &m.Emotion, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		if stress.Valid {
			v := int(stress.Int64)
			m.Stress = &v
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

// FocusMinutes sums study and work durations for one day.
func (s *JournalStore) FocusMinutes(userID int64, date string) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration), 0) FROM study_sessions WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum focus minutes: %w", err)
	}
	return total, nil
}
