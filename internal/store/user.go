package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/dayboard/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var notify, whatsapp, briefing, review int
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&notify, &u.Settings.NotificationEmail, &whatsapp, &u.Settings.WhatsAppPhone,
		&briefing, &u.Settings.Briefing.Time, &review, &u.Settings.Review.Time,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Settings.Enabled = notify != 0
	u.Settings.WhatsAppEnabled = whatsapp != 0
	u.Settings.Briefing.Enabled = briefing != 0
	u.Settings.Review.Enabled = review != 0
	return &u, nil
}

const userCols = `id, email, password_hash, phone, role,
	notify_enabled, notification_email, whatsapp_enabled, whatsapp_phone,
	briefing_enabled, briefing_time, review_enabled, review_time,
	created_at, updated_at`

func (s *UserStore) Create(email, passwordHash, phone, role string) (*model.User, error) {
	if role == "" {
		role = model.RoleUser
	}
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, phone, role) VALUES (?, ?, ?, ?)`,
		email, passwordHash, phone, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) SetRole(id int64, role string) error {
	_, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

func (s *UserStore) SetPasswordHash(id int64, hash string) error {
	_, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("set user password: %w", err)
	}
	return nil
}

func (s *UserStore) SetPhone(id int64, phone string) error {
	_, err := s.db.Exec(`UPDATE users SET phone = ? WHERE id = ?`, phone, id)
	if err != nil {
		return fmt.Errorf("set user phone: %w", err)
	}
	return nil
}

// UpdateNotificationSettings replaces all notification columns for a user.
func (s *UserStore) UpdateNotificationSettings(id int64, ns model.NotificationSettings) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET
		   notify_enabled = ?, notification_email = ?, whatsapp_enabled = ?, whatsapp_phone = ?,
		   briefing_enabled = ?, briefing_time = ?, review_enabled = ?, review_time = ?
		 WHERE id = ?`,
		boolInt(ns.Enabled), ns.NotificationEmail, boolInt(ns.WhatsAppEnabled), ns.WhatsAppPhone,
		boolInt(ns.Briefing.Enabled), ns.Briefing.Time, boolInt(ns.Review.Enabled), ns.Review.Time,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update notification settings: %w", err)
	}
	return s.GetByID(id)
}

// ListNotifiable returns users with notifications globally enabled, ordered by id.
func (s *UserStore) ListNotifiable() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users WHERE notify_enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list notifiable users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
