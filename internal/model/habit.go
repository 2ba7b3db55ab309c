package model

import "time"

const (
	HabitDone   = "Done"
	HabitMissed = "Missed"
)

type Habit struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Streak    int       `json:"streak"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h Habit) Done() bool {
	return h.Status == HabitDone
}
