package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/notification"
	"itrackerAPI/internal/stats"
	"itrackerAPI/internal/streak"
	"itrackerAPI/internal/user"
	"itrackerAPI/internal/validation"
)

type UserService struct {
	db  *pgxpool.Pool
	loc *time.Location
	now func() time.Time
}

func NewUserService(db *pgxpool.Pool, loc *time.Location) *UserService {
	return &UserService{db: db, loc: loc, now: time.Now}
}

const userColumns = `id, clerk_id, email, username, first_name, last_name, image_url, role, created_at, updated_at`

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

// CreateUser provisions a local user. Clerk may redeliver user.created, so an
// existing clerk_id is refreshed instead of failing.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (clerk_id) DO UPDATE SET
		email = EXCLUDED.email,
		username = EXCLUDED.username,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		image_url = EXCLUDED.image_url,
		updated_at = NOW()
	RETURNING ` + userColumns

	u := &user.User{}
	row := s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		req.ClerkID,
		req.Email,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
	)
	if err := scanUser(row, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	u := &user.User{}
	if err := scanUser(s.db.QueryRow(ctx, query, clerkID), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// UpdateProfileByClerkID overwrites only the non-empty fields of req.
func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		email = COALESCE(NULLIF($2, ''), email),
		username = COALESCE(NULLIF($3, ''), username),
		first_name = COALESCE(NULLIF($4, ''), first_name),
		last_name = COALESCE(NULLIF($5, ''), last_name),
		image_url = COALESCE(NULLIF($6, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING ` + userColumns

	u := &user.User{}
	row := s.db.QueryRow(ctx, query, clerkID, req.Email, req.Username, req.FirstName, req.LastName, req.ImageURL)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// DeleteUserByClerkID removes the user together with their habits, logs,
// achievements and devices.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	logger.Info("User deleted", "clerk_id", clerkID)
	return nil
}

func (s *UserService) IsAdmin(ctx context.Context, clerkID string) (bool, error) {
	var role user.Role
	err := s.db.QueryRow(ctx, `SELECT role FROM users WHERE clerk_id = $1`, clerkID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to load role: %w", err)
	}
	return role == user.RoleAdmin, nil
}

func (s *UserService) RegisterDevice(ctx context.Context, clerkID string, req *user.RegisterDeviceRequest) error {
	if req.Platform == "" {
		req.Platform = "android"
	}
	if err := validation.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO device_tokens (user_id, token, platform, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, userID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	logger.Debug("Device registered", "user_id", userID, "platform", req.Platform)
	return nil
}

func (s *UserService) GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// GetUserStats runs the streak engine over the user's data and adds the
// aggregate counters shown on the account page.
func (s *UserService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	habits, err := fetchHabits(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	logs, err := fetchLogs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	views := streak.ComputeViews(habits, logs, streak.Today(s.now(), s.loc))

	out := &stats.UserStats{
		TotalHabits:      len(views),
		TotalCompletions: len(logs),
		BestStreak:       streak.BestStreak(views),
	}
	for _, v := range views {
		if v.CompletedToday {
			out.CompletedToday++
		}
	}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_achievements WHERE user_id = $1`, userID).Scan(&out.AchievementsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count achievements: %w", err)
	}

	return out, nil
}
