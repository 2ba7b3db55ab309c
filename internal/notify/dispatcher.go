// Package notify delivers daily digests: the Dispatcher composes and sends
// one digest, the Scheduler decides when each user's digests are due.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/dayboard/internal/digest"
	"github.com/dukerupert/dayboard/internal/metrics"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/websocket"
)

const defaultSendTimeout = 35 * time.Second

type UserReader interface {
	GetByID(id int64) (*model.User, error)
}

type HabitReader interface {
	ListByUserDate(userID int64, date string) ([]model.Habit, error)
}

type TaskReader interface {
	ListFrom(userID int64, fromDate string) ([]model.Task, error)
	CountIncomplete(userID int64) (int, error)
}

// EmailSender is a markup-capable transport.
type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// MessageSender is a plain-text messaging transport.
type MessageSender interface {
	Configured() bool
	Send(ctx context.Context, phone, text string) error
}

// Publisher pushes real-time events to a user's open connections.
type Publisher interface {
	SendToUser(userID int64, msg websocket.Message)
}

type Dispatcher struct {
	users       UserReader
	habits      HabitReader
	tasks       TaskReader
	email       EmailSender
	whatsapp    MessageSender
	events      Publisher
	now         func() time.Time
	loc         *time.Location
	sendTimeout time.Duration
	logger      *slog.Logger
}

type Option func(*Dispatcher)

func WithEmail(s EmailSender) Option {
	return func(d *Dispatcher) { d.email = s }
}

func WithWhatsApp(s MessageSender) Option {
	return func(d *Dispatcher) { d.whatsapp = s }
}

func WithEvents(p Publisher) Option {
	return func(d *Dispatcher) { d.events = p }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithLocation sets the zone that defines "today" and the schedule times.
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithSendTimeout bounds a whole transport call, retries included.
func WithSendTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.sendTimeout = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func NewDispatcher(users UserReader, habits HabitReader, tasks TaskReader, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		users:       users,
		habits:      habits,
		tasks:       tasks,
		now:         time.Now,
		loc:         time.Local,
		sendTimeout: defaultSendTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "dispatcher")
	return d
}

// Now returns the dispatcher clock in its configured location.
func (d *Dispatcher) Now() time.Time {
	return d.now().In(d.loc)
}

// ValidChannel reports whether channel names a supported transport.
func ValidChannel(channel string) bool {
	return channel == model.ChannelEmail || channel == model.ChannelWhatsApp
}

// Dispatch builds and sends one digest for the user. It never retries;
// retry policy belongs to the transport.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int64, kind, channel string) error {
	u, err := d.users.GetByID(userID)
	if err != nil {
		return &AggregationError{UserID: userID, Err: fmt.Errorf("load user: %w", err)}
	}
	if u == nil {
		return &ConfigError{UserID: userID, Channel: channel, Reason: "user not found"}
	}
	return d.DispatchUser(ctx, *u, kind, channel)
}

// DispatchUser is Dispatch for an already loaded user.
func (d *Dispatcher) DispatchUser(ctx context.Context, u model.User, kind, channel string) error {
	start := time.Now()
	err := d.dispatch(ctx, u, kind, channel)
	d.record(u.ID, kind, channel, start, err)
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, u model.User, kind, channel string) error {
	if kind != model.DigestBriefing && kind != model.DigestReview {
		return &ConfigError{UserID: u.ID, Channel: channel, Reason: "unknown digest kind"}
	}
	dest, err := d.destination(u, channel)
	if err != nil {
		return err
	}

	snap, err := d.snapshot(u.ID)
	if err != nil {
		return err
	}

	p, err := digest.Build(kind, snap)
	if err != nil {
		return &AggregationError{UserID: u.ID, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	switch channel {
	case model.ChannelEmail:
		body, err := digest.RenderHTML(p)
		if err != nil {
			return &AggregationError{UserID: u.ID, Err: err}
		}
		err = d.email.Send(ctx, dest, digest.Subject(kind), body, digest.RenderText(p))
		if err != nil {
			return &DeliveryError{UserID: u.ID, Channel: channel, Destination: dest, Err: err}
		}
	case model.ChannelWhatsApp:
		if err := d.whatsapp.Send(ctx, dest, digest.RenderText(p)); err != nil {
			return &DeliveryError{UserID: u.ID, Channel: channel, Destination: dest, Err: err}
		}
	}
	return nil
}

// SendMessage delivers free-form text through the same destination
// resolution as digests.
func (d *Dispatcher) SendMessage(ctx context.Context, userID int64, channel, subject, text string) error {
	u, err := d.users.GetByID(userID)
	if err != nil {
		return &AggregationError{UserID: userID, Err: fmt.Errorf("load user: %w", err)}
	}
	if u == nil {
		return &ConfigError{UserID: userID, Channel: channel, Reason: "user not found"}
	}

	dest, err := d.destination(*u, channel)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	switch channel {
	case model.ChannelEmail:
		if subject == "" {
			subject = "Message from Dayboard"
		}
		body := "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>"
		err = d.email.Send(ctx, dest, subject, body, text)
	case model.ChannelWhatsApp:
		err = d.whatsapp.Send(ctx, dest, text)
	}
	if err != nil {
		return &DeliveryError{UserID: userID, Channel: channel, Destination: dest, Err: err}
	}
	return nil
}

// destination resolves the override, then the account value, and checks the
// transport before anything is read or sent.
func (d *Dispatcher) destination(u model.User, channel string) (string, error) {
	var dest string
	var configured bool
	switch channel {
	case model.ChannelEmail:
		dest = firstNonEmpty(u.Settings.NotificationEmail, u.Email)
		configured = d.email != nil && d.email.Configured()
	case model.ChannelWhatsApp:
		dest = firstNonEmpty(u.Settings.WhatsAppPhone, u.Phone)
		configured = d.whatsapp != nil && d.whatsapp.Configured()
	default:
		return "", &ConfigError{UserID: u.ID, Channel: channel, Reason: "unknown channel"}
	}
	if dest == "" {
		return "", &ConfigError{UserID: u.ID, Channel: channel, Reason: "no destination"}
	}
	if !configured {
		return "", &ConfigError{UserID: u.ID, Channel: channel, Reason: "transport not configured"}
	}
	return dest, nil
}

func (d *Dispatcher) snapshot(userID int64) (digest.Snapshot, error) {
	now := d.Now()
	today := now.Format("2006-01-02")

	habits, err := d.habits.ListByUserDate(userID, today)
	if err != nil {
		return digest.Snapshot{}, &AggregationError{UserID: userID, Err: fmt.Errorf("list habits: %w", err)}
	}
	tasks, err := d.tasks.ListFrom(userID, today)
	if err != nil {
		return digest.Snapshot{}, &AggregationError{UserID: userID, Err: fmt.Errorf("list tasks: %w", err)}
	}
	open, err := d.tasks.CountIncomplete(userID)
	if err != nil {
		return digest.Snapshot{}, &AggregationError{UserID: userID, Err: fmt.Errorf("count open tasks: %w", err)}
	}

	for _, h := range habits {
		if h.Status != model.HabitDone && h.Status != model.HabitMissed {
			return digest.Snapshot{}, &AggregationError{UserID: userID, Err: fmt.Errorf("habit %d: unknown status %q", h.ID, h.Status)}
		}
	}
	for _, t := range tasks {
		switch t.Status {
		case model.TaskTodo, model.TaskInProgress, model.TaskDone:
		default:
			return digest.Snapshot{}, &AggregationError{UserID: userID, Err: fmt.Errorf("task %d: unknown status %q", t.ID, t.Status)}
		}
	}

	return digest.Snapshot{Date: now, Habits: habits, Tasks: tasks, OpenTasks: open}, nil
}

func (d *Dispatcher) record(userID int64, kind, channel string, start time.Time, err error) {
	result := resultLabel(err)
	metrics.RecordDispatch(kind, channel, result, time.Since(start))

	if err != nil {
		d.logger.Warn("digest not sent", "user_id", userID, "kind", kind, "channel", channel, "result", result, "error", err)
	} else {
		d.logger.Info("digest sent", "user_id", userID, "kind", kind, "channel", channel)
	}

	if d.events == nil {
		return
	}
	extra := map[string]any{"kind": kind, "channel": channel}
	if err != nil {
		extra["error"] = err.Error()
		d.events.SendToUser(userID, websocket.NewMessage("digest", "failed", extra))
		return
	}
	d.events.SendToUser(userID, websocket.NewMessage("digest", "sent", extra))
}

func resultLabel(err error) string {
	var cfgErr *ConfigError
	var aggErr *AggregationError
	var delErr *DeliveryError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &aggErr):
		return "aggregation_error"
	case errors.As(err, &delErr):
		return "delivery_error"
	default:
		return "error"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
