package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/store"
	"github.com/dukerupert/dayboard/internal/websocket"
)

var timeFormatRegexp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type SettingsHandler struct {
	userStore *store.UserStore
	hub       *websocket.Hub
}

func NewSettingsHandler(us *store.UserStore, hub *websocket.Hub) *SettingsHandler {
	return &SettingsHandler{userStore: us, hub: hub}
}

func (h *SettingsHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	u, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u.Settings)
}

// UpdateNotifications applies a partial update: fields missing from the
// body keep their stored values.
func (h *SettingsHandler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	u, err := h.userStore.GetByID(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	ns := u.Settings
	if err := json.NewDecoder(r.Body).Decode(&ns); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateNotificationSettings(ns); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	u, err = h.userStore.UpdateNotificationSettings(userID, ns)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		return
	}

	if h.hub != nil {
		h.hub.SendToUser(userID, websocket.NewMessage("settings", "updated", nil))
	}
	writeJSON(w, http.StatusOK, u.Settings)
}

func validateNotificationSettings(ns model.NotificationSettings) error {
	if !timeFormatRegexp.MatchString(ns.Briefing.Time) {
		return fmt.Errorf("briefing.time must be HH:MM format")
	}
	if !timeFormatRegexp.MatchString(ns.Review.Time) {
		return fmt.Errorf("review.time must be HH:MM format")
	}
	if ns.NotificationEmail != "" {
		if _, err := mail.ParseAddress(ns.NotificationEmail); err != nil {
			return fmt.Errorf("notification_email is not a valid address")
		}
	}
	if ns.WhatsAppPhone != "" && !isPhone(ns.WhatsAppPhone) {
		return fmt.Errorf("whatsapp_phone must be digits with an optional leading +")
	}
	return nil
}

func isPhone(s string) bool {
	if s[0] == '+' {
		s = s[1:]
	}
	return len(s) >= 6 && isDigits(s)
}
