// Package streak turns a user's habits and completion log into view-ready
// streaks, progress values and chart series. Everything here is a pure
// function of its arguments; callers fetch the data and pick "today".
package streak

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"itrackerAPI/internal/habit"
)

const (
	// maxWalk bounds the backward walk over previous days.
	maxWalk = 365

	progressPerDay = 10
	maxProgress    = 100

	dayLayout = "2006-01-02"
)

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type HabitView struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Category       string    `json:"category"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completedToday"`
	Progress       int       `json:"progress"`
	// StreakBroken is false for a zero streak only when the habit was created today.
	StreakBroken bool `json:"streakBroken"`
}

// Bucket is one bar of a progress chart.
type Bucket struct {
	Label     string `json:"name"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type Dashboard struct {
	Habits     []HabitView `json:"habits"`
	Weekly     []Bucket    `json:"weekly"`
	Categories []Bucket    `json:"categories"`
}

// Today returns midnight of now's calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ComputeHabitView derives the card state for h. Only logs whose HabitID
// matches h.ID are considered; several logs on one date count once.
func ComputeHabitView(h habit.Habit, logs []habit.CompletionLogEntry, today time.Time) HabitView {
	done := completedDays(h.ID, logs)

	completedToday := done[dayKey(today)]

	var streak int
	broken := false
	switch {
	case completedToday:
		streak = 1 + walkBack(done, today.AddDate(0, 0, -1))
	case done[dayKey(today.AddDate(0, 0, -1))]:
		streak = 1 + walkBack(done, today.AddDate(0, 0, -2))
	default:
		// A habit created today has had no chance to be completed yet.
		broken = dayKey(h.CreatedAt.In(today.Location())) != dayKey(today)
	}

	return HabitView{
		ID:             h.ID,
		Title:          h.Name,
		Description:    h.Description,
		Category:       Category(h.Frequency),
		Streak:         streak,
		CompletedToday: completedToday,
		Progress:       Progress(streak),
		StreakBroken:   broken,
	}
}

// ComputeViews runs ComputeHabitView for every habit, keeping input order.
func ComputeViews(habits []habit.Habit, logs []habit.CompletionLogEntry, today time.Time) []HabitView {
	views := make([]HabitView, 0, len(habits))
	for _, h := range habits {
		views = append(views, ComputeHabitView(h, logs, today))
	}
	return views
}

// ComputeWeeklySeries returns Sun..Sat for the week containing today. Only
// today's bucket is populated; earlier days are not rebuilt from the log.
func ComputeWeeklySeries(views []HabitView, today time.Time) []Bucket {
	completedToday := 0
	for _, v := range views {
		if v.CompletedToday {
			completedToday++
		}
	}

	start := today.AddDate(0, 0, -int(today.Weekday()))
	todayKey := dayKey(today)

	series := make([]Bucket, 0, len(weekdayLabels))
	for i, label := range weekdayLabels {
		b := Bucket{Label: label, Total: len(views)}
		if dayKey(start.AddDate(0, 0, i)) == todayKey {
			b.Completed = completedToday
		}
		series = append(series, b)
	}
	return series
}

// ComputeCategorySeries groups views by category in first-seen order.
func ComputeCategorySeries(views []HabitView) []Bucket {
	index := make(map[string]int)
	series := []Bucket{}

	for _, v := range views {
		i, ok := index[v.Category]
		if !ok {
			i = len(series)
			index[v.Category] = i
			series = append(series, Bucket{Label: v.Category})
		}
		series[i].Total++
		if v.CompletedToday {
			series[i].Completed++
		}
	}
	return series
}

func ComputeDashboard(habits []habit.Habit, logs []habit.CompletionLogEntry, today time.Time) Dashboard {
	views := ComputeViews(habits, logs, today)
	return Dashboard{
		Habits:     views,
		Weekly:     ComputeWeeklySeries(views, today),
		Categories: ComputeCategorySeries(views),
	}
}

// Progress maps a streak onto a 0-100 display value.
func Progress(streak int) int {
	if streak <= 0 {
		return 0
	}
	return min(maxProgress, streak*progressPerDay)
}

// Category is the display label for a frequency: "daily" becomes "Daily".
func Category(f habit.Frequency) string {
	s := string(f)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// BestStreak returns the longest current streak among views.
func BestStreak(views []HabitView) int {
	best := 0
	for _, v := range views {
		best = max(best, v.Streak)
	}
	return best
}

func completedDays(habitID uuid.UUID, logs []habit.CompletionLogEntry) map[string]bool {
	done := make(map[string]bool)
	for _, l := range logs {
		if l.HabitID == habitID {
			done[l.CompletedDate.Format(dayLayout)] = true
		}
	}
	return done
}

// walkBack counts consecutive completed days starting at from and moving into the past.
func walkBack(done map[string]bool, from time.Time) int {
	n := 0
	for i := 0; i < maxWalk; i++ {
		if !done[dayKey(from.AddDate(0, 0, -i))] {
			break
		}
		n++
	}
	return n
}

func dayKey(t time.Time) string {
	return t.Format(dayLayout)
}
