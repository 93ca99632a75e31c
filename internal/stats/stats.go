package stats

import "math"

// AppStats is the admin overview of application usage.
type AppStats struct {
	TotalUsers       int     `json:"totalUsers"`
	ActiveUsers      int     `json:"activeUsers"`
	TotalHabits      int     `json:"totalHabits"`
	TotalCompletions int     `json:"totalCompletions"`
	ActiveRate       int     `json:"activeRate"`     // percent of users that are active
	HabitsPerUser    float64 `json:"habitsPerUser"` // one decimal
}

// UserStats backs the account statistics panel.
type UserStats struct {
	TotalHabits       int `json:"totalHabits"`
	CompletedToday    int `json:"completedToday"`
	TotalCompletions  int `json:"totalCompletions"`
	BestStreak        int `json:"bestStreak"`
	AchievementsCount int `json:"achievementsCount"`
}

// Derive fills the ratio fields. Both are zero when there are no users.
func (s *AppStats) Derive() {
	if s.TotalUsers <= 0 {
		s.ActiveRate = 0
		s.HabitsPerUser = 0
		return
	}
	s.ActiveRate = int(math.Round(float64(s.ActiveUsers) / float64(s.TotalUsers) * 100))
	s.HabitsPerUser = math.Round(float64(s.TotalHabits)/float64(s.TotalUsers)*10) / 10
}
