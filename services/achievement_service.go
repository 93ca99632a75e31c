package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itrackerAPI/internal/achievement"
	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/metrics"
	"itrackerAPI/internal/validation"
)

type AchievementService struct {
	db *pgxpool.Pool
}

func NewAchievementService(db *pgxpool.Pool) *AchievementService {
	return &AchievementService{db: db}
}

const achievementColumns = `a.id, a.title, a.description, a.icon, a.condition_type, a.condition_value, a.created_at, a.updated_at`

func scanAchievement(row pgx.Row, a *achievement.Achievement) error {
	return row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Icon,
		&a.ConditionType,
		&a.ConditionValue,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

// ListAchievements returns every definition, oldest first.
func (s *AchievementService) ListAchievements(ctx context.Context) ([]achievement.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements a ORDER BY a.created_at ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	list := []achievement.Achievement{}
	for rows.Next() {
		var a achievement.Achievement
		if err := scanAchievement(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read achievements: %w", err)
	}

	return list, nil
}

func (s *AchievementService) CreateAchievement(ctx context.Context, req *achievement.CreateAchievementRequest) (*achievement.Achievement, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.ConditionType != achievement.ConditionManual && req.ConditionValue == nil {
		return nil, fmt.Errorf("%w: conditionValue is required for %s", ErrInvalidInput, req.ConditionType)
	}

	query := `
	INSERT INTO achievements AS a (id, title, description, icon, condition_type, condition_value, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING ` + achievementColumns

	a := &achievement.Achievement{}
	row := s.db.QueryRow(ctx, query, uuid.New(), req.Title, req.Description, req.Icon, req.ConditionType, req.ConditionValue)
	if err := scanAchievement(row, a); err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}

	logger.Info("Achievement created", "achievement_id", a.ID, "condition", a.ConditionType)
	return a, nil
}

func (s *AchievementService) GetUserAchievements(ctx context.Context, clerkID string) ([]achievement.UserAchievement, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT ua.id, ua.user_id, ua.achievement_id, ua.earned_at, ` + achievementColumns + `
	FROM user_achievements ua
	JOIN achievements a ON a.id = ua.achievement_id
	WHERE ua.user_id = $1
	ORDER BY ua.earned_at DESC
	`
	return s.queryEarned(ctx, query, userID)
}

// GetNewAchievements returns the caller's achievements earned after the cursor
// together with the advanced cursor.
func (s *AchievementService) GetNewAchievements(ctx context.Context, clerkID string, cursor achievement.Cursor) ([]achievement.UserAchievement, achievement.Cursor, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, cursor, err
	}

	query := `
	SELECT ua.id, ua.user_id, ua.achievement_id, ua.earned_at, ` + achievementColumns + `
	FROM user_achievements ua
	JOIN achievements a ON a.id = ua.achievement_id
	WHERE ua.user_id = $1 AND ua.earned_at > $2
	ORDER BY ua.earned_at ASC
	`
	rows, err := s.queryEarned(ctx, query, userID, cursor.LastChecked)
	if err != nil {
		return nil, cursor, err
	}

	fresh, next := cursor.Advance(rows)
	return fresh, next, nil
}

// ClaimUnpushed marks up to 500 earned achievements that have not been pushed
// yet and returns them, oldest first. Rows are only visible once their award
// transaction commits, so a late commit is claimed on a later call regardless
// of its earned_at. SKIP LOCKED lets several instances claim concurrently.
func (s *AchievementService) ClaimUnpushed(ctx context.Context) ([]achievement.UserAchievement, error) {
	query := `
	WITH claimed AS (
		UPDATE user_achievements
		SET pushed_at = NOW()
		WHERE id IN (
			SELECT id FROM user_achievements
			WHERE pushed_at IS NULL
			ORDER BY earned_at ASC
			LIMIT 500
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, achievement_id, earned_at
	)
	SELECT ua.id, ua.user_id, ua.achievement_id, ua.earned_at, ` + achievementColumns + `
	FROM claimed ua
	JOIN achievements a ON a.id = ua.achievement_id
	ORDER BY ua.earned_at ASC
	`
	return s.queryEarned(ctx, query)
}

// AwardEligible inserts every definition the user now qualifies for and
// returns the ones that were actually granted.
func (s *AchievementService) AwardEligible(ctx context.Context, userID uuid.UUID, progress achievement.Progress) ([]achievement.Achievement, error) {
	defs, err := s.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := s.earnedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := achievement.Evaluate(defs, earned, progress)
	if len(candidates) == 0 {
		return []achievement.Achievement{}, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	granted := make([]achievement.Achievement, 0, len(candidates))
	for _, a := range candidates {
		result, err := tx.Exec(ctx, `
			INSERT INTO user_achievements (id, user_id, achievement_id, earned_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, uuid.New(), userID, a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to award achievement: %w", err)
		}
		// A concurrent request may have granted it first.
		if result.RowsAffected() > 0 {
			granted = append(granted, a)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit achievements: %w", err)
	}

	if len(granted) > 0 {
		metrics.AchievementsAwarded.Add(float64(len(granted)))
		logger.Info("Achievements awarded", "user_id", userID, "count", len(granted))
	}
	return granted, nil
}

func (s *AchievementService) earnedSet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earned achievements: %w", err)
	}
	defer rows.Close()

	earned := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan earned achievement: %w", err)
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

func (s *AchievementService) queryEarned(ctx context.Context, query string, args ...any) ([]achievement.UserAchievement, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user achievements: %w", err)
	}
	defer rows.Close()

	list := []achievement.UserAchievement{}
	for rows.Next() {
		var ua achievement.UserAchievement
		err := rows.Scan(
			&ua.ID,
			&ua.UserID,
			&ua.AchievementID,
			&ua.EarnedAt,
			&ua.Achievement.ID,
			&ua.Achievement.Title,
			&ua.Achievement.Description,
			&ua.Achievement.Icon,
			&ua.Achievement.ConditionType,
			&ua.Achievement.ConditionValue,
			&ua.Achievement.CreatedAt,
			&ua.Achievement.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user achievement: %w", err)
		}
		list = append(list, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user achievements: %w", err)
	}

	return list, nil
}
