package notification

import (
	"fmt"

	"github.com/google/uuid"

	"itrackerAPI/internal/achievement"
)

type NotificationType string

const (
	NotificationAchievement NotificationType = "achievement"
)

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Push is one message addressed to every device of a user.
type Push struct {
	UserID uuid.UUID
	Type   NotificationType
	Title  string
	Body   string
	Data   map[string]any
}

// ForAchievement builds the push announcing a newly earned achievement.
func ForAchievement(ua achievement.UserAchievement) Push {
	a := ua.Achievement
	return Push{
		UserID: ua.UserID,
		Type:   NotificationAchievement,
		Title:  fmt.Sprintf("%s Achievement unlocked", a.Icon),
		Body:   fmt.Sprintf("%s: %s", a.Title, a.Description),
		Data: map[string]any{
			"type":           string(NotificationAchievement),
			"achievementId": ua.AchievementID.String(),
			"earnedAt":      ua.EarnedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		},
	}
}

// StringData converts push data to the string map FCM expects.
func StringData(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
