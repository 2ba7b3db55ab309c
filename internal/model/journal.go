package model

import "time"

type MoodEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Score     int       `json:"score"`
	Energy    int       `json:"energy"`
	Stress    *int      `json:"stress"`
	Emotion   string    `json:"emotion"`
	CreatedAt time.Time `json:"created_at"`
}

type StudySession struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Area      string    `json:"area"`
	Topic     string    `json:"topic"`
	Duration  int       `json:"duration"`
	Focus     *int      `json:"focus"`
	CreatedAt time.Time `json:"created_at"`
}
