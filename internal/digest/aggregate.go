// Package digest scores a user's day and composes the briefing and review
// payloads that every delivery channel renders.
package digest

import (
	"fmt"
	"math"
	"strings"

	"github.com/dukerupert/dayboard/internal/model"
)

const (
	AllHabitsOnTrack = "All habits on track"
	NoStreak         = "Start building your streak"
	KeepItUp         = "Great job! Keep up the momentum."

	SuggestPrioritize = "Consider prioritizing tasks for tomorrow."
	SuggestHabits     = "Focus on completing pending habits."
	SuggestThreeTasks = "Try to complete at least 3 tasks daily."
)

// Efficiency scores the day from 0 to 100. Habits and tasks each carry half
// the weight; a day with no tasks gets the full task half, a day with no
// habits gets none of the habit half.
func Efficiency(habits []model.Habit, tasks []model.Task) int {
	var habitScore float64
	if len(habits) > 0 {
		habitScore = float64(countDone(habits)) / float64(len(habits)) * 50
	}

	taskScore := 50.0
	if len(tasks) > 0 {
		incomplete := 0
		for _, t := range tasks {
			if !t.Completed() {
				incomplete++
			}
		}
		taskScore = float64(len(tasks)-incomplete) / float64(len(tasks)) * 50
	}

	return int(math.Floor(habitScore + taskScore + 0.5))
}

// FocusAreas lists the habits that are not done yet.
func FocusAreas(habits []model.Habit) string {
	var pending []string
	for _, h := range habits {
		if !h.Done() {
			pending = append(pending, h.Name)
		}
	}
	if len(pending) == 0 {
		return AllHabitsOnTrack
	}
	return strings.Join(pending, ", ")
}

func Streak(habits []model.Habit) string {
	done := countDone(habits)
	if done == 0 {
		return NoStreak
	}
	return fmt.Sprintf("%d habits", done)
}

// Suggestions applies each rule independently and falls back to a single
// positive note when none of them fire.
func Suggestions(habits []model.Habit, completedTasks, pendingTasks int) []string {
	var out []string
	if pendingTasks > 5 {
		out = append(out, SuggestPrioritize)
	}
	if countDone(habits) < len(habits) {
		out = append(out, SuggestHabits)
	}
	if completedTasks < 3 {
		out = append(out, SuggestThreeTasks)
	}
	if len(out) == 0 {
		return []string{KeepItUp}
	}
	return out
}

// HabitPercent is the rounded share of done habits, 0 with no habits.
func HabitPercent(habits []model.Habit) int {
	if len(habits) == 0 {
		return 0
	}
	return int(math.Floor(float64(countDone(habits))/float64(len(habits))*100 + 0.5))
}

func countDone(habits []model.Habit) int {
	n := 0
	for _, h := range habits {
		if h.Done() {
			n++
		}
	}
	return n
}
