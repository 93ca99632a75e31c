package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"itrackerAPI/internal/database"
)

// SetupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when the variable is unset.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, dbURL, 5)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	truncate(t, pool)
	t.Cleanup(func() {
		truncate(t, pool)
		pool.Close()
	})

	return pool
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE device_tokens, user_achievements, achievements, habit_logs, habits, users CASCADE`)
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
}

// SeedUser inserts a user with the given Clerk id and role and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool, clerkID, role string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, clerk_id, email, username, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, 'Test', 'User', $5)
	`, id, clerkID, clerkID+"@example.com", clerkID, role)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// SeedHabit inserts a habit created at createdAt.
func SeedHabit(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name, frequency string, createdAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO habits (id, user_id, name, frequency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, name, frequency, createdAt)
	if err != nil {
		t.Fatalf("Failed to seed habit: %v", err)
	}
	return id
}

// SeedCompletion logs a completion of habitID on day (YYYY-MM-DD).
func SeedCompletion(t *testing.T, pool *pgxpool.Pool, userID, habitID uuid.UUID, day string) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO habit_logs (habit_id, user_id, completed_date)
		VALUES ($1, $2, $3::date)
	`, habitID, userID, day)
	if err != nil {
		t.Fatalf("Failed to seed completion: %v", err)
	}
}

// MockClerkWebhookPayload builds a Clerk webhook body for eventType.
func MockClerkWebhookPayload(eventType, clerkID string) []byte {
	switch eventType {
	case "user.deleted":
		return []byte(fmt.Sprintf(`{"data": {"id": %q, "deleted": true}, "object": "event", "type": %q}`, clerkID, eventType))
	default:
		return []byte(fmt.Sprintf(`{
			"data": {
				"id": %q,
				"first_name": "Test",
				"last_name": "User",
				"username": "testuser",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com",
					"verification": {"status": "verified"}
				}],
				"primary_email_address_id": "email_123",
				"image_url": "https://example.com/image.jpg"
			},
			"object": "event",
			"type": %q
		}`, clerkID, eventType))
	}
}
