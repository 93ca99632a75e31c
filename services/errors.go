package services

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrHabitNotFound       = errors.New("habit not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotAdmin            = errors.New("admin role required")
)
