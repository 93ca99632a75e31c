package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itrackerAPI/internal/achievement"
	"itrackerAPI/internal/habit"
	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/metrics"
	"itrackerAPI/internal/streak"
	"itrackerAPI/internal/validation"
)

type HabitService struct {
	db           *pgxpool.Pool
	achievements *AchievementService
	loc          *time.Location
	now          func() time.Time
}

func NewHabitService(db *pgxpool.Pool, achievements *AchievementService, loc *time.Location) *HabitService {
	return &HabitService{
		db:           db,
		achievements: achievements,
		loc:          loc,
		now:          time.Now,
	}
}

// CompletionResult is returned after marking a habit done or not done.
// Unlocked is always empty when un-completing.
type CompletionResult struct {
	Dashboard *streak.Dashboard         `json:"dashboard"`
	Unlocked  []achievement.Achievement `json:"unlockedAchievements"`
}

func (s *HabitService) today() time.Time {
	return streak.Today(s.now(), s.loc)
}

// GetDashboard fetches the user's habits and full log and runs the engine over them.
func (s *HabitService) GetDashboard(ctx context.Context, clerkID string) (*streak.Dashboard, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	return s.dashboard(ctx, userID)
}

func (s *HabitService) dashboard(ctx context.Context, userID uuid.UUID) (*streak.Dashboard, error) {
	habits, err := fetchHabits(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	logs, err := fetchLogs(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	dash := streak.ComputeDashboard(habits, logs, s.today())
	return &dash, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var description *string
	if d := strings.TrimSpace(req.Description); d != "" {
		description = &d
	}

	query := `
	INSERT INTO habits (id, user_id, name, description, frequency, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	RETURNING id, user_id, name, description, frequency, created_at
	`

	h := &habit.Habit{}
	err = s.db.QueryRow(ctx, query, uuid.New(), userID, req.Name, description, req.Frequency).Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Description,
		&h.Frequency,
		&h.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	logger.Info("Habit created", "habit_id", h.ID, "user_id", userID, "frequency", h.Frequency)
	return h, nil
}

// DeleteHabit removes an owned habit. Its completion logs go with it.
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrHabitNotFound
	}

	logger.Info("Habit deleted", "habit_id", habitID, "user_id", userID)
	return nil
}

// CompleteHabit logs today's completion, awards any achievements it unlocks
// and returns the recomputed dashboard. Completing twice is a no-op.
func (s *HabitService) CompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*CompletionResult, error) {
	userID, err := s.ownedHabitUser(ctx, clerkID, habitID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	query := `
	INSERT INTO habit_logs (id, habit_id, user_id, completed_date)
	VALUES ($1, $2, $3, $4::date)
	ON CONFLICT (habit_id, completed_date) DO NOTHING
	`
	result, err := s.db.Exec(ctx, query, uuid.New(), habitID, userID, today.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to log completion: %w", err)
	}
	if result.RowsAffected() > 0 {
		metrics.HabitCompletions.WithLabelValues("complete").Inc()
	}

	dash, err := s.dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &CompletionResult{Dashboard: dash, Unlocked: []achievement.Achievement{}}
	if s.achievements == nil {
		return res, nil
	}

	progress, err := s.progress(ctx, userID, dash)
	if err != nil {
		logger.Error("Failed to compute achievement progress", "user_id", userID, "error", err)
		return res, nil
	}

	unlocked, err := s.achievements.AwardEligible(ctx, userID, progress)
	if err != nil {
		// The completion itself is stored; the next completion retries the award.
		logger.Error("Failed to award achievements", "user_id", userID, "error", err)
		return res, nil
	}
	res.Unlocked = unlocked

	return res, nil
}

// UncompleteHabit removes today's completion, if any, and returns the recomputed dashboard.
func (s *HabitService) UncompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*CompletionResult, error) {
	userID, err := s.ownedHabitUser(ctx, clerkID, habitID)
	if err != nil {
		return nil, err
	}

	query := `
	DELETE FROM habit_logs
	WHERE habit_id = $1 AND user_id = $2 AND completed_date = $3::date
	`
	result, err := s.db.Exec(ctx, query, habitID, userID, s.today().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to remove completion: %w", err)
	}
	if result.RowsAffected() > 0 {
		metrics.HabitCompletions.WithLabelValues("uncomplete").Inc()
	}

	dash, err := s.dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{Dashboard: dash, Unlocked: []achievement.Achievement{}}, nil
}

func (s *HabitService) ownedHabitUser(ctx context.Context, clerkID string, habitID uuid.UUID) (uuid.UUID, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return uuid.Nil, err
	}

	var owner uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT user_id FROM habits WHERE id = $1`, habitID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrHabitNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to load habit: %w", err)
	}
	// Another user's habit is reported exactly like a missing one.
	if owner != userID {
		return uuid.Nil, ErrHabitNotFound
	}

	return userID, nil
}

func (s *HabitService) progress(ctx context.Context, userID uuid.UUID, dash *streak.Dashboard) (achievement.Progress, error) {
	var total int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM habit_logs WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return achievement.Progress{}, fmt.Errorf("failed to count completions: %w", err)
	}

	return achievement.Progress{
		BestStreak:       streak.BestStreak(dash.Habits),
		TotalCompletions: total,
	}, nil
}
