package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"itrackerAPI/internal/logger"
	"itrackerAPI/services"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, clerkID string) (bool, error)
}

// RequireAdmin rejects callers whose stored role is not admin. The role is
// read on every request so a demotion takes effect immediately.
func RequireAdmin(checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clerkID, ok := GetClerkID(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			isAdmin, err := checker.IsAdmin(ctx, clerkID)
			if err != nil && !errors.Is(err, services.ErrUserNotFound) {
				logger.Error("Failed to check admin role", "clerk_id", clerkID, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to check permissions")
				return
			}
			if !isAdmin {
				respondWithError(w, http.StatusForbidden, services.ErrNotAdmin.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
