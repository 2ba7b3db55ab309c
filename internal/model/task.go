package model

import "time"

const (
	TaskTodo       = "Todo"
	TaskInProgress = "In Progress"
	TaskDone       = "Done"
)

type Task struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Date       string    `json:"date"`
	Title      string    `json:"title"`
	Project    string    `json:"project"`
	Priority   string    `json:"priority"`
	Status     string    `json:"status"`
	EstMinutes *int      `json:"est_minutes"`
	ActMinutes *int      `json:"act_minutes"`
	Energy     string    `json:"energy"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t Task) Completed() bool {
	return t.Status == TaskDone
}
