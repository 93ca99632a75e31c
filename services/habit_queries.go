package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itrackerAPI/internal/habit"
)

// resolveUserID maps a Clerk subject onto the local user id.
func resolveUserID(ctx context.Context, db *pgxpool.Pool, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func fetchHabits(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]habit.Habit, error) {
	query := `
	SELECT id, user_id, name, description, frequency, created_at
	FROM habits
	WHERE user_id = $1
	ORDER BY created_at ASC
	`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer rows.Close()

	var habits []habit.Habit
	for rows.Next() {
		var h habit.Habit
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Frequency, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read habits: %w", err)
	}

	return habit.ValidHabits(habits), nil
}

// fetchLogs returns every completion of the user, newest first.
func fetchLogs(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]habit.CompletionLogEntry, error) {
	query := `
	SELECT id, habit_id, user_id, completed_date
	FROM habit_logs
	WHERE user_id = $1
	ORDER BY completed_date DESC
	`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completion logs: %w", err)
	}
	defer rows.Close()

	var logs []habit.CompletionLogEntry
	for rows.Next() {
		var l habit.CompletionLogEntry
		if err := rows.Scan(&l.ID, &l.HabitID, &l.UserID, &l.CompletedDate); err != nil {
			return nil, fmt.Errorf("failed to scan completion log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read completion logs: %w", err)
	}

	return habit.ValidLogs(logs), nil
}
