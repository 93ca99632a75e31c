package handlers

import (
	"context"
	"net/http"
	"time"

	"itrackerAPI/internal/stats"
	"itrackerAPI/internal/user"
	"itrackerAPI/middleware"
)

type UserStore interface {
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
	GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error)
}

type UserHandler struct {
	userService UserStore
}

func NewUserHandler(userService UserStore) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.userService.DeleteUserByClerkID(ctx, clerkID); err != nil {
		respondWithServiceError(w, err, "Failed to delete account")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (h *UserHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	s, err := h.userService.GetUserStats(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load stats")
		return
	}

	respondWithJSON(w, http.StatusOK, s)
}
