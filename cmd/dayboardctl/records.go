package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/store"
)

const dateLayout = "2006-01-02"

func (a *app) seedDemoCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "seed-demo <email>",
		Short: "Add a day of sample habits, tasks and journal entries for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			if date == "" {
				date = time.Now().In(cfg.Location).Format(dateLayout)
			}
			u, err := store.NewUserStore(db).GetByEmail(args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%s: %w", args[0], errUserNotFound)
			}
			if err := seedDemo(db, u.ID, date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s for %s\n", date, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to seed (YYYY-MM-DD, default today)")
	return cmd
}

// seedDemo writes two habits (one missed), four tasks (one done) and a
// mood and study entry, enough for every digest section to render.
func seedDemo(db *sql.DB, userID int64, date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}

	habits := store.NewHabitStore(db)
	for _, h := range []model.Habit{
		{Name: "Read 20 pages", Category: "Mind", Status: model.HabitDone, Streak: 4},
		{Name: "Morning run", Category: "Health", Status: model.HabitMissed},
	} {
		h.UserID, h.Date = userID, date
		if _, err := habits.Create(h); err != nil {
			return err
		}
	}

	est := 60
	tasks := store.NewTaskStore(db)
	for _, t := range []model.Task{
		{Title: "Write weekly report", Project: "Work", Priority: "High", Status: model.TaskDone, EstMinutes: &est},
		{Title: "Review pull requests", Project: "Work", Priority: "Medium", Status: model.TaskInProgress},
		{Title: "Plan next sprint", Project: "Work", Priority: "Medium", Status: model.TaskTodo},
		{Title: "Book dentist appointment", Project: "Personal", Priority: "Low", Status: model.TaskTodo},
	} {
		t.UserID, t.Date = userID, date
		if _, err := tasks.Create(t); err != nil {
			return err
		}
	}

	journal := store.NewJournalStore(db)
	if _, err := journal.CreateMood(model.MoodEntry{UserID: userID, Date: date, Score: 7, Energy: 6, Emotion: "Calm"}); err != nil {
		return err
	}
	focus := 8
	if _, err := journal.CreateStudySession(model.StudySession{UserID: userID, Date: date, Area: "Study", Topic: "Go concurrency", Duration: 45, Focus: &focus}); err != nil {
		return err
	}
	return nil
}

func (a *app) setStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <habit|task> <id> <status>",
		Short: "Change the status of a habit (Done, Missed) or task (Todo, In Progress, Done)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscan(args[1], &id); err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			_, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := setStatus(db, args[0], id, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d is now %s\n", args[0], id, args[2])
			return nil
		},
	}
}

var errRecordNotFound = errors.New("record not found")

func setStatus(db *sql.DB, kind string, id int64, status string) error {
	switch kind {
	case "habit":
		if status != model.HabitDone && status != model.HabitMissed {
			return fmt.Errorf("invalid habit status %q", status)
		}
		h, err := store.NewHabitStore(db).SetStatus(id, status)
		if err != nil {
			return err
		}
		if h == nil {
			return fmt.Errorf("habit %d: %w", id, errRecordNotFound)
		}
	case "task":
		if status != model.TaskTodo && status != model.TaskInProgress && status != model.TaskDone {
			return fmt.Errorf("invalid task status %q", status)
		}
		t, err := store.NewTaskStore(db).SetStatus(id, status)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("task %d: %w", id, errRecordNotFound)
		}
	default:
		return fmt.Errorf("unknown record type %q: want habit or task", kind)
	}
	return nil
}
