package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/digest"
	"github.com/dukerupert/dayboard/internal/store"
)

type StatsHandler struct {
	habits  *store.HabitStore
	tasks   *store.TaskStore
	journal *store.JournalStore
	now     func() time.Time
}

// NewStatsHandler takes the clock that defines "today", normally the
// dispatcher's so stats and digests agree on the date.
func NewStatsHandler(hs *store.HabitStore, ts *store.TaskStore, js *store.JournalStore, now func() time.Time) *StatsHandler {
	return &StatsHandler{habits: hs, tasks: ts, journal: js, now: now}
}

type todayStats struct {
	HabitPercent   int     `json:"habitPercent"`
	FocusMinutes   int     `json:"focusMinutes"`
	AvgMood        float64 `json:"avgMood"`
	AvgEnergy      float64 `json:"avgEnergy"`
	CompletedTasks int     `json:"completedTasks"`
	TotalTasks     int     `json:"totalTasks"`
}

func (h *StatsHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	today := h.now().Format("2006-01-02")

	habits, err := h.habits.ListByUserDate(userID, today)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load habits"})
		return
	}
	focus, err := h.journal.FocusMinutes(userID, today)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load study sessions"})
		return
	}
	moods, err := h.journal.ListMoods(userID, today)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load moods"})
		return
	}
	tasks, err := h.tasks.ListByDate(userID, today)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load tasks"})
		return
	}

	stats := todayStats{
		HabitPercent: digest.HabitPercent(habits),
		FocusMinutes: focus,
		TotalTasks:   len(tasks),
	}
	for _, t := range tasks {
		if t.Completed() {
			stats.CompletedTasks++
		}
	}
	if len(moods) > 0 {
		var score, energy int
		for _, m := range moods {
			score += m.Score
			energy += m.Energy
		}
		stats.AvgMood = oneDecimal(float64(score) / float64(len(moods)))
		stats.AvgEnergy = oneDecimal(float64(energy) / float64(len(moods)))
	}

	writeJSON(w, http.StatusOK, stats)
}

func oneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
