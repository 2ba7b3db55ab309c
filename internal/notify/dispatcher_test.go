package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/dayboard/internal/model"
)

func TestDispatchBriefingEndToEnd(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	u := env.createUser(t, "alice@example.com", "", enabledSettings())

	env.addHabit(t, u.ID, "2026-10-15", "Meditate", model.HabitDone)
	env.addHabit(t, u.ID, "2026-10-15", "Read", model.HabitMissed)
	env.addTask(t, u.ID, "2026-10-15", "Ship release", model.TaskDone)
	env.addTask(t, u.ID, "2026-10-15", "Write report", model.TaskTodo)
	env.addTask(t, u.ID, "2026-10-15", "Call plumber", model.TaskInProgress)
	env.addTask(t, u.ID, "2026-10-16", "Plan sprint", model.TaskTodo)
	// Outside the window.
	env.addTask(t, u.ID, "2026-10-14", "Old errand", model.TaskTodo)
	env.addHabit(t, u.ID, "2026-10-14", "Yesterday habit", model.HabitDone)

	if err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelEmail); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(env.email.calls) != 1 {
		t.Fatalf("email calls = %d, want 1", len(env.email.calls))
	}
	call := env.email.calls[0]
	if call.to != "alice@example.com" {
		t.Errorf("to = %q", call.to)
	}
	if call.subject != "🌞 Your Daily Briefing" {
		t.Errorf("subject = %q", call.subject)
	}
	for _, want := range []string{"Meditate", "Read", "Write report", "Call plumber", "Plan sprint", "Efficiency:</strong> 38%"} {
		if !strings.Contains(call.html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	for _, want := range []string{"Meditate", "Read", "Write report", "Call plumber", "Plan sprint", "Efficiency: 38%"} {
		if !strings.Contains(call.text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	for _, unwanted := range []string{"Old errand", "Yesterday habit"} {
		if strings.Contains(call.html, unwanted) {
			t.Errorf("html should not contain %q", unwanted)
		}
	}

	events := env.events.events[u.ID]
	if len(events) != 1 || events[0].Type != "digest_sent" {
		t.Errorf("events = %+v, want one digest_sent", events)
	}
}

func TestDispatchWhatsAppUsesOverride(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	ns := enabledSettings()
	ns.WhatsAppEnabled = true
	ns.WhatsAppPhone = "+15550199"
	u := env.createUser(t, "alice@example.com", "+15550100", ns)
	env.addTask(t, u.ID, "2026-10-15", "Write report", model.TaskTodo)

	if err := env.d.Dispatch(context.Background(), u.ID, model.DigestReview, model.ChannelWhatsApp); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(env.whatsapp.calls) != 1 {
		t.Fatalf("whatsapp calls = %d, want 1", len(env.whatsapp.calls))
	}
	call := env.whatsapp.calls[0]
	if call.phone != "+15550199" {
		t.Errorf("phone = %q, want override", call.phone)
	}
	if !strings.Contains(call.text, "*Evening Review - Thu, Oct 15 2026*") {
		t.Errorf("text = %q", call.text)
	}
	if !strings.Contains(call.text, "- Pending: 1") {
		t.Errorf("text missing pending count: %q", call.text)
	}
	if len(env.email.calls) != 0 {
		t.Errorf("email should not be called")
	}
}

func TestDispatchEmailFallsBackToAccount(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	ns := enabledSettings()
	ns.NotificationEmail = "inbox@example.com"
	u := env.createUser(t, "alice@example.com", "", ns)

	if err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelEmail); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := env.email.calls[0].to; got != "inbox@example.com" {
		t.Errorf("to = %q, want override", got)
	}

	ns.NotificationEmail = ""
	if _, err := env.users.UpdateNotificationSettings(u.ID, ns); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelEmail); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := env.email.calls[1].to; got != "alice@example.com" {
		t.Errorf("to = %q, want account email", got)
	}
}

func TestDispatchNoDestination(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	u := env.createUser(t, "alice@example.com", "", enabledSettings())

	err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelWhatsApp)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if cfgErr.Reason != "no destination" {
		t.Errorf("reason = %q", cfgErr.Reason)
	}
	if len(env.whatsapp.calls) != 0 || len(env.email.calls) != 0 {
		t.Errorf("transport called %d/%d times, want 0", len(env.email.calls), len(env.whatsapp.calls))
	}

	events := env.events.events[u.ID]
	if len(events) != 1 || events[0].Type != "digest_failed" {
		t.Errorf("events = %+v, want one digest_failed", events)
	}
}

func TestDispatchTransportNotConfigured(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	env.email.configured = false
	u := env.createUser(t, "alice@example.com", "", enabledSettings())

	err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelEmail)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if len(env.email.calls) != 0 {
		t.Errorf("email calls = %d, want 0", len(env.email.calls))
	}
}

func TestDispatchUnknownUser(t *testing.T) {
	env := newTestEnv(t, briefingTime)

	err := env.d.Dispatch(context.Background(), 999, model.DigestBriefing, model.ChannelEmail)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestDispatchUnknownChannel(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	u := env.createUser(t, "alice@example.com", "", enabledSettings())

	err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, "pigeon")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	u := env.createUser(t, "alice@example.com", "", enabledSettings())

	err := env.d.Dispatch(context.Background(), u.ID, "weekly", model.ChannelEmail)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if cfgErr.Reason != "unknown digest kind" {
		t.Errorf("reason = %q", cfgErr.Reason)
	}
	if len(env.email.calls) != 0 {
		t.Errorf("email calls = %d, want 0", len(env.email.calls))
	}
}

func TestDispatchSendTimeout(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	if env.d.sendTimeout != defaultSendTimeout {
		t.Errorf("default send timeout = %v, want %v", env.d.sendTimeout, defaultSendTimeout)
	}

	env.whatsapp.hang = true
	ns := enabledSettings()
	ns.WhatsAppEnabled = true
	u := env.createUser(t, "alice@example.com", "+15550100", ns)
	d := env.dispatcher(WithSendTimeout(50 * time.Millisecond))

	start := time.Now()
	err := d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelWhatsApp)
	elapsed := time.Since(start)

	var delErr *DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want wrapped context.DeadlineExceeded", err)
	}
	if elapsed > time.Second {
		t.Errorf("dispatch took %v, want well under 1s", elapsed)
	}
}

func TestDispatchDeliveryError(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	boom := errors.New("gateway down")
	env.email.failFor = map[string]error{"alice@example.com": boom}
	u := env.createUser(t, "alice@example.com", "", enabledSettings())

	err := env.d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelEmail)
	var delErr *DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped transport error")
	}
	if delErr.Destination != "alice@example.com" {
		t.Errorf("destination = %q", delErr.Destination)
	}
	if len(env.email.calls) != 1 {
		t.Errorf("email calls = %d, want 1 (no dispatcher retry)", len(env.email.calls))
	}
}

type badHabits struct{}

func (badHabits) ListByUserDate(userID int64, date string) ([]model.Habit, error) {
	return []model.Habit{{ID: 1, UserID: userID, Date: date, Name: "Odd", Status: "✅ Done"}}, nil
}

type failingHabits struct{}

func (failingHabits) ListByUserDate(int64, string) ([]model.Habit, error) {
	return nil, errors.New("disk I/O error")
}

func TestDispatchAggregationError(t *testing.T) {
	for name, habits := range map[string]HabitReader{
		"malformed record": badHabits{},
		"read failure":     failingHabits{},
	} {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, briefingTime)
			u := env.createUser(t, "alice@example.com", "", enabledSettings())
			d := NewDispatcher(env.users, habits, env.tasks,
				WithEmail(env.email),
				WithClock(func() time.Time { return briefingTime }),
				WithLocation(time.UTC),
				WithLogger(discardLogger()),
			)

			err := d.Dispatch(context.Background(), u.ID, model.DigestBriefing, model.ChannelEmail)
			var aggErr *AggregationError
			if !errors.As(err, &aggErr) {
				t.Fatalf("err = %v, want *AggregationError", err)
			}
			if len(env.email.calls) != 0 {
				t.Errorf("email calls = %d, want 0", len(env.email.calls))
			}
		})
	}
}

func TestDispatchUsesConfiguredLocation(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 10, 16, 2, 0, 0, 0, time.UTC))
	loc := time.FixedZone("UTC-5", -5*60*60)
	env.d = NewDispatcher(env.users, env.habits, env.tasks,
		WithEmail(env.email),
		WithClock(func() time.Time { return env.now }),
		WithLocation(loc),
		WithLogger(discardLogger()),
	)
	u := env.createUser(t, "alice@example.com", "", enabledSettings())
	env.addHabit(t, u.ID, "2026-10-15", "Evening walk", model.HabitDone)

	if err := env.d.Dispatch(context.Background(), u.ID, model.DigestReview, model.ChannelEmail); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(env.email.calls[0].html, "Thu, Oct 15 2026") {
		t.Errorf("expected local date label in html")
	}
	if !strings.Contains(env.email.calls[0].html, "1/1 (100%)") {
		t.Errorf("expected local-day habit to be counted")
	}
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t, briefingTime)
	u := env.createUser(t, "alice@example.com", "+15550100", enabledSettings())

	if err := env.d.SendMessage(context.Background(), u.ID, model.ChannelEmail, "", "hello <world>"); err != nil {
		t.Fatalf("send email: %v", err)
	}
	call := env.email.calls[0]
	if call.subject != "Message from Dayboard" {
		t.Errorf("subject = %q", call.subject)
	}
	if call.html != "<p>hello &lt;world&gt;</p>" {
		t.Errorf("html = %q", call.html)
	}

	if err := env.d.SendMessage(context.Background(), u.ID, model.ChannelWhatsApp, "", "ping"); err != nil {
		t.Fatalf("send whatsapp: %v", err)
	}
	if got := env.whatsapp.calls[0]; got.phone != "+15550100" || got.text != "ping" {
		t.Errorf("whatsapp call = %+v", got)
	}
}
