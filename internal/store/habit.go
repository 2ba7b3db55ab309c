package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/dayboard/internal/model"
)

type HabitStore struct {
	db *sql.DB
}

func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

func scanHabit(scanner interface{ Scan(...any) error }) (*model.Habit, error) {
	var h model.Habit
	err := scanner.Scan(
		&h.ID, &h.UserID, &h.Date, &h.Name, &h.Category, &h.Status,
		&h.Streak, &h.Notes, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const habitCols = `id, user_id, date, name, category, status, streak, notes, created_at, updated_at`

func (s *HabitStore) Create(h model.Habit) (*model.Habit, error) {
	result, err := s.db.Exec(
		`INSERT INTO habits (user_id, date, name, category, status, streak, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.UserID, h.Date, h.Name, h.Category, h.Status, h.Streak, h.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HabitStore) GetByID(id int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// ListByUserDate returns a user's habit records for a single day in creation order.
func (s *HabitStore) ListByUserDate(userID int64, date string) ([]model.Habit, error) {
	rows, err := s.db.Query(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? AND date = ? ORDER BY id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

func (s *HabitStore) SetStatus(id int64, status string) (*model.Habit, error) {
	_, err := s.db.Exec(`UPDATE habits SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("set habit status: %w", err)
	}
	return s.GetByID(id)
}
