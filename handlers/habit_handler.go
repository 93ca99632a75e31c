package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"itrackerAPI/internal/habit"
	"itrackerAPI/internal/streak"
	"itrackerAPI/middleware"
	"itrackerAPI/services"
)

type HabitStore interface {
	GetDashboard(ctx context.Context, clerkID string) (*streak.Dashboard, error)
	CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error)
	DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error
	CompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*services.CompletionResult, error)
	UncompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*services.CompletionResult, error)
}

type HabitHandler struct {
	habitService HabitStore
}

func NewHabitHandler(habitService HabitStore) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

// GET /api/v1/habits - habit views with weekly and category series
func (h *HabitHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	dash, err := h.habitService.GetDashboard(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load habits")
		return
	}

	respondWithJSON(w, http.StatusOK, dash)
}

// POST /api/v1/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.habitService.CreateHabit(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create habit")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// DELETE /api/v1/habits/{id}
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	if err := h.habitService.DeleteHabit(ctx, clerkID, habitID); err != nil {
		respondWithServiceError(w, err, "Failed to delete habit")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted successfully"})
}

// POST /api/v1/habits/{id}/complete
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	result, err := h.habitService.CompleteHabit(ctx, clerkID, habitID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to complete habit")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DELETE /api/v1/habits/{id}/complete
func (h *HabitHandler) UncompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return
	}

	dash, err := h.habitService.UncompleteHabit(ctx, clerkID, habitID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to uncomplete habit")
		return
	}

	respondWithJSON(w, http.StatusOK, dash)
}
