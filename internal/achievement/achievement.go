package achievement

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type ConditionType string

const (
	ConditionManual           ConditionType = "manual"
	ConditionDailyStreak      ConditionType = "daily_streak"
	ConditionTotalCompletions ConditionType = "total_completions"
)

const DefaultIcon = "🏆"

type Achievement struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description" db:"description"`
	Icon           string        `json:"icon" db:"icon"`
	ConditionType  ConditionType `json:"conditionType" db:"condition_type"`
	ConditionValue *int          `json:"conditionValue" db:"condition_value"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

type UserAchievement struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	UserID        uuid.UUID   `json:"userId" db:"user_id"`
	AchievementID uuid.UUID   `json:"achievementId" db:"achievement_id"`
	EarnedAt      time.Time   `json:"earnedAt" db:"earned_at"`
	Achievement   Achievement `json:"achievement"`
}

type CreateAchievementRequest struct {
	Title          string        `json:"title" validate:"required,max=100"`
	Description    string        `json:"description" validate:"required,max=500"`
	Icon           string        `json:"icon,omitempty"`
	ConditionType  ConditionType `json:"conditionType,omitempty" validate:"omitempty,oneof=manual daily_streak total_completions"`
	ConditionValue *int          `json:"conditionValue,omitempty" validate:"omitempty,min=1"`
}

// Normalize fills the form defaults: trophy icon and manual condition.
func (r *CreateAchievementRequest) Normalize() {
	if r.Icon == "" {
		r.Icon = DefaultIcon
	}
	if r.ConditionType == "" {
		r.ConditionType = ConditionManual
	}
}

// Progress is the user's standing that conditions are checked against.
type Progress struct {
	BestStreak       int `json:"bestStreak"`
	TotalCompletions int `json:"totalCompletions"`
}

// Met reports whether progress satisfies a's condition. Manual achievements
// and achievements without a threshold are never met automatically.
func (a Achievement) Met(p Progress) bool {
	if a.ConditionValue == nil {
		return false
	}
	switch a.ConditionType {
	case ConditionDailyStreak:
		return p.BestStreak >= *a.ConditionValue
	case ConditionTotalCompletions:
		return p.TotalCompletions >= *a.ConditionValue
	default:
		return false
	}
}

// Evaluate returns the definitions newly met by progress, skipping ones in earned.
func Evaluate(defs []Achievement, earned map[uuid.UUID]bool, p Progress) []Achievement {
	var unlocked []Achievement
	for _, a := range defs {
		if earned[a.ID] {
			continue
		}
		if a.Met(p) {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// Cursor is the "last checked" instant of a single polling session.
type Cursor struct {
	LastChecked time.Time `json:"lastChecked"`
}

// Advance returns rows earned strictly after the cursor, oldest first, and
// the cursor moved to the newest of them.
func (c Cursor) Advance(rows []UserAchievement) ([]UserAchievement, Cursor) {
	fresh := make([]UserAchievement, 0, len(rows))
	next := c
	for _, r := range rows {
		if !r.EarnedAt.After(c.LastChecked) {
			continue
		}
		fresh = append(fresh, r)
		if r.EarnedAt.After(next.LastChecked) {
			next.LastChecked = r.EarnedAt
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].EarnedAt.Before(fresh[j].EarnedAt)
	})
	return fresh, next
}
