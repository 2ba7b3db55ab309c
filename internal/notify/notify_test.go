package notify

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/dayboard/internal/database"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/store"
	"github.com/dukerupert/dayboard/internal/websocket"
)

type emailCall struct {
	to, subject, html, text string
}

type fakeEmail struct {
	configured bool
	calls      []emailCall
	failFor    map[string]error
	// hangFor recipients block until the send context ends.
	hangFor map[string]bool
}

func (f *fakeEmail) Configured() bool { return f.configured }

func (f *fakeEmail) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	f.calls = append(f.calls, emailCall{to, subject, htmlBody, textBody})
	if f.hangFor[to] {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := f.failFor[to]; err != nil {
		return err
	}
	return nil
}

type messageCall struct {
	phone, text string
}

type fakeMessenger struct {
	configured bool
	calls      []messageCall
	err        error
	hang       bool
}

func (f *fakeMessenger) Configured() bool { return f.configured }

func (f *fakeMessenger) Send(ctx context.Context, phone, text string) error {
	f.calls = append(f.calls, messageCall{phone, text})
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type fakePublisher struct {
	events map[int64][]websocket.Message
}

func (f *fakePublisher) SendToUser(userID int64, msg websocket.Message) {
	if f.events == nil {
		f.events = make(map[int64][]websocket.Message)
	}
	f.events[userID] = append(f.events[userID], msg)
}

// testEnv wires a dispatcher to an in-memory database and fake transports.
type testEnv struct {
	db       *sql.DB
	users    *store.UserStore
	habits   *store.HabitStore
	tasks    *store.TaskStore
	sent     *store.DigestLogStore
	email    *fakeEmail
	whatsapp *fakeMessenger
	events   *fakePublisher
	now      time.Time
	d        *Dispatcher
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:       db,
		users:    store.NewUserStore(db),
		habits:   store.NewHabitStore(db),
		tasks:    store.NewTaskStore(db),
		sent:     store.NewDigestLogStore(db),
		email:    &fakeEmail{configured: true},
		whatsapp: &fakeMessenger{configured: true},
		events:   &fakePublisher{},
		now:      now,
	}
	env.d = env.dispatcher()
	return env
}

func (env *testEnv) dispatcher(opts ...Option) *Dispatcher {
	base := []Option{
		WithEmail(env.email),
		WithWhatsApp(env.whatsapp),
		WithEvents(env.events),
		WithClock(func() time.Time { return env.now }),
		WithLocation(time.UTC),
		WithLogger(discardLogger()),
	}
	return NewDispatcher(env.users, env.habits, env.tasks, append(base, opts...)...)
}

func (env *testEnv) scheduler() *Scheduler {
	return NewScheduler(env.d, env.users, env.sent, discardLogger())
}

func (env *testEnv) createUser(t *testing.T, email, phone string, ns model.NotificationSettings) *model.User {
	t.Helper()
	u, err := env.users.Create(email, "", phone, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u, err = env.users.UpdateNotificationSettings(u.ID, ns)
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	return u
}

func (env *testEnv) addHabit(t *testing.T, userID int64, date, name, status string) {
	t.Helper()
	_, err := env.habits.Create(model.Habit{UserID: userID, Date: date, Name: name, Category: "Health", Status: status})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
}

func (env *testEnv) addTask(t *testing.T, userID int64, date, title, status string) {
	t.Helper()
	_, err := env.tasks.Create(model.Task{UserID: userID, Date: date, Title: title, Status: status})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enabledSettings() model.NotificationSettings {
	ns := model.DefaultNotificationSettings()
	ns.Enabled = true
	return ns
}

var briefingTime = time.Date(2026, 10, 15, 8, 0, 20, 0, time.UTC)
