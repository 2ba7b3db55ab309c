package digest

import (
	"fmt"
	"time"

	"github.com/dukerupert/dayboard/internal/model"
)

// Snapshot is the raw data a digest is built from, read once per dispatch.
type Snapshot struct {
	Date   time.Time
	Habits []model.Habit
	// Tasks are the user's tasks in the digest window, any status.
	Tasks []model.Task
	// OpenTasks counts every incomplete task the user has, regardless of date.
	OpenTasks int
}

type HabitLine struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Payload is the channel-agnostic content of one digest.
type Payload struct {
	Kind                string      `json:"kind"`
	DateLabel           string      `json:"date_label"`
	PendingTasks        []string    `json:"pending_tasks"`
	CompletedTasks      []string    `json:"completed_tasks"`
	Habits              []HabitLine `json:"habits"`
	CompletedHabitCount int         `json:"completed_habit_count"`
	TotalHabitCount     int         `json:"total_habit_count"`
	HabitPercent        int         `json:"habit_percent"`
	EfficiencyPercent   int         `json:"efficiency_percent"`
	FocusAreas          string      `json:"focus_areas"`
	Streak              string      `json:"streak"`
	OpenTaskCount       int         `json:"open_task_count"`
	Suggestions         []string    `json:"suggestions"`
}

// Build derives every metric once so renderers only format.
func Build(kind string, snap Snapshot) (Payload, error) {
	if kind != model.DigestBriefing && kind != model.DigestReview {
		return Payload{}, fmt.Errorf("unknown digest kind %q", kind)
	}

	p := Payload{
		Kind:                kind,
		DateLabel:           snap.Date.Format("Mon, Jan 2 2006"),
		CompletedHabitCount: countDone(snap.Habits),
		TotalHabitCount:     len(snap.Habits),
		HabitPercent:        HabitPercent(snap.Habits),
		EfficiencyPercent:   Efficiency(snap.Habits, snap.Tasks),
		FocusAreas:          FocusAreas(snap.Habits),
		Streak:              Streak(snap.Habits),
		OpenTaskCount:       snap.OpenTasks,
	}

	for _, h := range snap.Habits {
		p.Habits = append(p.Habits, HabitLine{Name: h.Name, Status: h.Status})
	}
	for _, t := range snap.Tasks {
		if t.Completed() {
			p.CompletedTasks = append(p.CompletedTasks, t.Title)
		} else {
			p.PendingTasks = append(p.PendingTasks, t.Title)
		}
	}

	p.Suggestions = Suggestions(snap.Habits, len(p.CompletedTasks), snap.OpenTasks)
	return p, nil
}
