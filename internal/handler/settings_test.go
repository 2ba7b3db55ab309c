package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/store"
)

func TestGetNotificationsDefaults(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice@example.com")
	h := NewSettingsHandler(store.NewUserStore(db), nil)

	rec := httptest.NewRecorder()
	h.GetNotifications(rec, asUser(httptest.NewRequest("GET", "/api/settings/notifications", nil), u.ID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got model.NotificationSettings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Briefing.Time != "08:00" || got.Review.Time != "20:00" {
		t.Errorf("times = %q/%q, want 08:00/20:00", got.Briefing.Time, got.Review.Time)
	}
	if !got.Briefing.Enabled || !got.Review.Enabled {
		t.Errorf("expected both schedules enabled by default")
	}
}

func TestUpdateNotificationsPartial(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice@example.com")
	us := store.NewUserStore(db)
	h := NewSettingsHandler(us, nil)

	body := `{"enabled": true, "whatsapp_enabled": true, "whatsapp_phone": "+15550100", "briefing": {"enabled": true, "time": "07:15"}}`
	rec := httptest.NewRecorder()
	h.UpdateNotifications(rec, asUser(httptest.NewRequest("PUT", "/api/settings/notifications", jsonBody(body)), u.ID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	stored, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	ns := stored.Settings
	if !ns.Enabled || !ns.WhatsAppEnabled || ns.WhatsAppPhone != "+15550100" {
		t.Errorf("settings = %+v", ns)
	}
	if ns.Briefing.Time != "07:15" {
		t.Errorf("briefing time = %q, want 07:15", ns.Briefing.Time)
	}
	if ns.Review.Time != "20:00" {
		t.Errorf("review time = %q, want unchanged 20:00", ns.Review.Time)
	}
}

func TestUpdateNotificationsValidation(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice@example.com")
	us := store.NewUserStore(db)
	h := NewSettingsHandler(us, nil)

	tests := []struct {
		name string
		body string
	}{
		{"hour out of range", `{"briefing": {"enabled": true, "time": "24:00"}}`},
		{"missing leading zero", `{"review": {"enabled": true, "time": "8:00"}}`},
		{"bad email", `{"notification_email": "not-an-email"}`},
		{"bad phone", `{"whatsapp_phone": "call me"}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.UpdateNotifications(rec, asUser(httptest.NewRequest("PUT", "/api/settings/notifications", jsonBody(tt.body)), u.ID))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	stored, _ := us.GetByID(u.ID)
	if stored.Settings != model.DefaultNotificationSettings() {
		t.Errorf("settings changed after rejected updates: %+v", stored.Settings)
	}
}

func TestGetNotificationsUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	h := NewSettingsHandler(store.NewUserStore(db), nil)

	rec := httptest.NewRecorder()
	h.GetNotifications(rec, asUser(httptest.NewRequest("GET", "/api/settings/notifications", nil), 404))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
