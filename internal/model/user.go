package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64                `json:"id"`
	Email        string               `json:"email"`
	PasswordHash string               `json:"-"`
	Phone        string               `json:"phone"`
	Role         string               `json:"role"`
	Settings     NotificationSettings `json:"settings"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// DigestSchedule is the per-kind send switch and local time of day ("HH:MM").
type DigestSchedule struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"`
}

type NotificationSettings struct {
	Enabled           bool           `json:"enabled"`
	NotificationEmail string         `json:"notification_email"`
	WhatsAppEnabled   bool           `json:"whatsapp_enabled"`
	WhatsAppPhone     string         `json:"whatsapp_phone"`
	Briefing          DigestSchedule `json:"briefing"`
	Review            DigestSchedule `json:"review"`
}

// DefaultNotificationSettings mirrors the column defaults in the users table.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Briefing: DigestSchedule{Enabled: true, Time: "08:00"},
		Review:   DigestSchedule{Enabled: true, Time: "20:00"},
	}
}
