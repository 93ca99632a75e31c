package habit

import (
	"time"

	"github.com/google/uuid"

	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/validation"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type Habit struct {
	ID          uuid.UUID `json:"id" db:"id" validate:"required"`
	UserID      uuid.UUID `json:"userId" db:"user_id" validate:"required"`
	Name        string    `json:"name" db:"name" validate:"required"`
	Description *string   `json:"description,omitempty" db:"description"`
	Frequency   Frequency `json:"frequency" db:"frequency" validate:"required,oneof=daily weekly monthly"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" validate:"required"`
}

// CompletionLogEntry marks a habit as done for one calendar day.
type CompletionLogEntry struct {
	ID            uuid.UUID `json:"id" db:"id" validate:"required"`
	HabitID       uuid.UUID `json:"habitId" db:"habit_id" validate:"required"`
	UserID        uuid.UUID `json:"userId" db:"user_id" validate:"required"`
	CompletedDate time.Time `json:"completedDate" db:"completed_date" validate:"required"`
}

// ValidHabits drops rows that cannot be interpreted by streak math.
func ValidHabits(rows []Habit) []Habit {
	valid := make([]Habit, 0, len(rows))
	for _, h := range rows {
		if err := validation.Struct(h); err != nil {
			logger.Warn("Dropping invalid habit row", "habit_id", h.ID, "error", err)
			continue
		}
		valid = append(valid, h)
	}
	return valid
}

// ValidLogs drops log rows missing a habit reference or a date.
func ValidLogs(rows []CompletionLogEntry) []CompletionLogEntry {
	valid := make([]CompletionLogEntry, 0, len(rows))
	for _, l := range rows {
		if err := validation.Struct(l); err != nil {
			logger.Warn("Dropping invalid completion log row", "log_id", l.ID, "error", err)
			continue
		}
		valid = append(valid, l)
	}
	return valid
}
