package handlers

import (
	"context"
	"net/http"
	"time"

	"itrackerAPI/internal/achievement"
	"itrackerAPI/middleware"
)

type AchievementStore interface {
	ListAchievements(ctx context.Context) ([]achievement.Achievement, error)
	CreateAchievement(ctx context.Context, req *achievement.CreateAchievementRequest) (*achievement.Achievement, error)
	GetUserAchievements(ctx context.Context, clerkID string) ([]achievement.UserAchievement, error)
	GetNewAchievements(ctx context.Context, clerkID string, cursor achievement.Cursor) ([]achievement.UserAchievement, achievement.Cursor, error)
}

type AchievementHandler struct {
	achievementService AchievementStore
	now                func() time.Time
}

func NewAchievementHandler(achievementService AchievementStore) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
		now:                time.Now,
	}
}

type newAchievementsResponse struct {
	Achievements []achievement.UserAchievement `json:"achievements"`
	Cursor       time.Time                     `json:"cursor"`
}

// GET /api/v1/user/achievements
func (h *AchievementHandler) GetUserAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	list, err := h.achievementService.GetUserAchievements(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/user/achievements/new?since=RFC3339
//
// Without since the session starts now and the first poll returns nothing.
// Clients pass the returned cursor back as since on the next poll.
func (h *AchievementHandler) GetNewAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	cursor := achievement.Cursor{LastChecked: h.now().UTC()}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339Nano, since)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		cursor.LastChecked = t
	}

	fresh, next, err := h.achievementService.GetNewAchievements(ctx, clerkID, cursor)
	if err != nil {
		respondWithServiceError(w, err, "Failed to check achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, newAchievementsResponse{
		Achievements: fresh,
		Cursor:       next.LastChecked,
	})
}

// GET /api/v1/admin/achievements
func (h *AchievementHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.achievementService.ListAchievements(ctx)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/admin/achievements
func (h *AchievementHandler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req achievement.CreateAchievementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.achievementService.CreateAchievement(ctx, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create achievement")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}
