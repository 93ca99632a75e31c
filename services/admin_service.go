package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/stats"
	"itrackerAPI/internal/streak"
	"itrackerAPI/internal/user"
)

// activeWindowDays is how far back a completion keeps a user "active".
const activeWindowDays = 30

// IdentityProvider removes accounts from the external auth provider.
type IdentityProvider interface {
	DeleteUser(ctx context.Context, clerkID string) error
}

// ClerkIdentity deletes users through the Clerk backend API.
type ClerkIdentity struct{}

func (ClerkIdentity) DeleteUser(ctx context.Context, clerkID string) error {
	_, err := clerkuser.Delete(ctx, clerkID)
	if err != nil {
		var apiErr *clerk.APIErrorResponse
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 404 {
			return nil
		}
		return fmt.Errorf("failed to delete clerk user: %w", err)
	}
	return nil
}

type AdminService struct {
	db       *pgxpool.Pool
	identity IdentityProvider
	loc      *time.Location
	now      func() time.Time
}

func NewAdminService(db *pgxpool.Pool, identity IdentityProvider, loc *time.Location) *AdminService {
	return &AdminService{db: db, identity: identity, loc: loc, now: time.Now}
}

// activeSince is the first completed_date, in the app timezone, that still
// counts as recent activity.
func (s *AdminService) activeSince() string {
	return streak.Today(s.now(), s.loc).AddDate(0, 0, -activeWindowDays).Format(time.DateOnly)
}

func (s *AdminService) GetStats(ctx context.Context) (*stats.AppStats, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(DISTINCT user_id) FROM habit_logs WHERE completed_date >= $1::date),
		(SELECT COUNT(*) FROM habits),
		(SELECT COUNT(*) FROM habit_logs)
	`

	out := &stats.AppStats{}
	err := s.db.QueryRow(ctx, query, s.activeSince()).Scan(
		&out.TotalUsers,
		&out.ActiveUsers,
		&out.TotalHabits,
		&out.TotalCompletions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get app stats: %w", err)
	}

	out.Derive()
	return out, nil
}

// ListUsers returns every user, newest first. A non-empty search filters on
// name, username or email, case-insensitively.
func (s *AdminService) ListUsers(ctx context.Context, search string) ([]user.AdminUserRow, error) {
	query := `
	SELECT
		u.id, u.clerk_id, u.email, u.username, u.first_name, u.last_name, u.created_at,
		(SELECT COUNT(*) FROM habits h WHERE h.user_id = u.id),
		EXISTS (
			SELECT 1 FROM habit_logs l
			WHERE l.user_id = u.id AND l.completed_date >= $3::date
		)
	FROM users u
	WHERE $1 = ''
	   OR u.email ILIKE $2
	   OR u.username ILIKE $2
	   OR (u.first_name || ' ' || u.last_name) ILIKE $2
	ORDER BY u.created_at DESC
	`

	search = strings.TrimSpace(search)
	pattern := "%" + escapeLike(search) + "%"

	rows, err := s.db.Query(ctx, query, search, pattern, s.activeSince())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	list := []user.AdminUserRow{}
	for rows.Next() {
		var (
			u      user.User
			row    user.AdminUserRow
			active bool
		)
		err := rows.Scan(
			&u.ID,
			&u.ClerkID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.CreatedAt,
			&row.HabitsCount,
			&active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		row.ID = u.ID
		row.ClerkID = u.ClerkID
		row.Name = u.DisplayName()
		row.Email = u.Email
		row.JoinDate = u.CreatedAt
		row.Status = user.StatusInactive
		if active {
			row.Status = user.StatusActive
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return list, nil
}

// DeleteUser removes the account from Clerk first, then locally. The Clerk
// webhook for the same deletion is then a no-op.
func (s *AdminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	var clerkID string
	err := s.db.QueryRow(ctx, `SELECT clerk_id FROM users WHERE id = $1`, userID).Scan(&clerkID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if s.identity != nil {
		if err := s.identity.DeleteUser(ctx, clerkID); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.Info("User deleted by admin", "user_id", userID, "clerk_id", clerkID)
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
