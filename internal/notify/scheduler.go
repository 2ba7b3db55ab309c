package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/dayboard/internal/metrics"
	"github.com/dukerupert/dayboard/internal/model"
)

const (
	slotLayout   = "2006-01-02T15:04"
	logRetention = 7 * 24 * time.Hour
)

// NotifiableLister returns users with notifications enabled.
type NotifiableLister interface {
	ListNotifiable() ([]model.User, error)
}

// SentLog persists which scheduled digests went out in which minute slot.
type SentLog interface {
	WasSent(userID int64, kind, channel, slot string) (bool, error)
	RecordSent(userID int64, kind, channel, slot string) error
	Cleanup(before time.Time) (int64, error)
}

// Scheduler fires each user's briefing and review at their configured
// minute. Minutes missed while the process is down are not replayed.
type Scheduler struct {
	mu         sync.RWMutex
	dispatcher *Dispatcher
	users      NotifiableLister
	sent       SentLog
	interval   time.Duration
	logger     *slog.Logger
	cancel     context.CancelFunc
	done       chan struct{}

	// owned by the loop goroutine
	lastSlot  string
	lastPrune string
}

// NewScheduler creates a digest scheduler that checks every minute.
func NewScheduler(d *Dispatcher, users NotifiableLister, sent SentLog, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: d,
		users:      users,
		sent:       sent,
		interval:   time.Minute,
		logger:     logger.With("component", "scheduler"),
	}
}

// SetInterval overrides the tick period. It must be called before Start.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.interval = d
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.dispatcher.Now()
	slot := now.Format(slotLayout)
	if slot == s.lastSlot {
		return
	}
	s.lastSlot = slot

	logger := s.logger.With("tick_id", uuid.NewString(), "slot", slot)
	s.prune(logger, now)

	users, err := s.users.ListNotifiable()
	if err != nil {
		logger.Error("list notifiable users", "error", err)
		return
	}
	metrics.RecordTick(len(users))

	hhmm := now.Format("15:04")
	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		s.processUser(ctx, logger, u, hhmm, slot)
	}
}

func (s *Scheduler) processUser(ctx context.Context, logger *slog.Logger, u model.User, hhmm, slot string) {
	schedules := []struct {
		kind  string
		sched model.DigestSchedule
	}{
		{model.DigestBriefing, u.Settings.Briefing},
		{model.DigestReview, u.Settings.Review},
	}

	channels := []string{model.ChannelEmail}
	if u.Settings.WhatsAppEnabled {
		channels = append(channels, model.ChannelWhatsApp)
	}

	for _, sc := range schedules {
		if !sc.sched.Enabled || sc.sched.Time != hhmm {
			continue
		}
		for _, ch := range channels {
			sent, err := s.sent.WasSent(u.ID, sc.kind, ch, slot)
			if err != nil {
				logger.Error("check digest log", "user_id", u.ID, "kind", sc.kind, "channel", ch, "error", err)
				continue
			}
			if sent {
				continue
			}

			if err := s.dispatcher.DispatchUser(ctx, u, sc.kind, ch); err != nil {
				logger.Error("scheduled digest failed", "user_id", u.ID, "kind", sc.kind, "channel", ch, "error", err)
				continue
			}

			if err := s.sent.RecordSent(u.ID, sc.kind, ch, slot); err != nil {
				logger.Error("record digest log", "user_id", u.ID, "kind", sc.kind, "channel", ch, "error", err)
			}
		}
	}
}

// prune drops digest log rows older than the retention once per day.
func (s *Scheduler) prune(logger *slog.Logger, now time.Time) {
	day := now.Format("2006-01-02")
	if day == s.lastPrune {
		return
	}
	s.lastPrune = day

	n, err := s.sent.Cleanup(now.Add(-logRetention))
	if err != nil {
		logger.Error("prune digest log", "error", err)
		return
	}
	if n > 0 {
		logger.Info("pruned digest log", "rows", n)
	}
}
