package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/dayboard/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var est, act sql.NullInt64
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Date, &t.Title, &t.Project, &t.Priority, &t.Status,
		&est, &act, &t.Energy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if est.Valid {
		v := int(est.Int64)
		t.EstMinutes = &v
	}
	if act.Valid {
		v := int(act.Int64)
		t.ActMinutes = &v
	}
	return &t, nil
}

const taskCols = `id, user_id, date, title, project, priority, status, est_minutes, act_minutes, energy, created_at, updated_at`

func (s *TaskStore) Create(t model.Task) (*model.Task, error) {
	if t.Status == "" {
		t.Status = model.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = "Medium"
	}
	result, err := s.db.Exec(
		`INSERT INTO tasks (user_id, date, title, project, priority, status, est_minutes, act_minutes, energy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Date, t.Title, t.Project, t.Priority, t.Status,
		nullInt(t.EstMinutes), nullInt(t.ActMinutes), t.Energy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListFrom returns a user's tasks dated on or after the given day.
func (s *TaskStore) ListFrom(userID int64, fromDate string) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? AND date >= ? ORDER BY date, id`,
		userID, fromDate,
	)
}

// ListByDate returns a user's tasks for exactly one day.
func (s *TaskStore) ListByDate(userID int64, date string) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? AND date = ? ORDER BY id`,
		userID, date,
	)
}

// CountIncomplete counts every task of the user that is not Done, regardless of date.
func (s *TaskStore) CountIncomplete(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status != ?`,
		userID, model.TaskDone,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count incomplete tasks: %w", err)
	}
	return n, nil
}

func (s *TaskStore) SetStatus(id int64, status string) (*model.Task, error) {
	_, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) list(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
