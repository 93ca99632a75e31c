package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"itrackerAPI/internal/stats"
	"itrackerAPI/internal/user"
)

type AdminStore interface {
	GetStats(ctx context.Context) (*stats.AppStats, error)
	ListUsers(ctx context.Context, search string) ([]user.AdminUserRow, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type AdminHandler struct {
	adminService AdminStore
}

func NewAdminHandler(adminService AdminStore) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.adminService.GetStats(ctx)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load stats")
		return
	}

	respondWithJSON(w, http.StatusOK, s)
}

// GET /api/v1/admin/users?search=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.adminService.ListUsers(ctx, r.URL.Query().Get("search"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

// DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	// Clerk is called first, so allow for a slower round trip.
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := pathUUID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.adminService.DeleteUser(ctx, userID); err != nil {
		respondWithServiceError(w, err, "Failed to delete user")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
