package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"itrackerAPI/internal/achievement"
	"itrackerAPI/internal/habit"
	"itrackerAPI/internal/stats"
	"itrackerAPI/internal/streak"
	"itrackerAPI/internal/user"
	"itrackerAPI/middleware"
	"itrackerAPI/services"
)

const testClerkID = "user_test"

func authed(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithClerkID(r.Context(), testClerkID))
}

func serve(router *mux.Router, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

type fakeHabits struct {
	dash      *streak.Dashboard
	created   *habit.CreateHabitRequest
	completed uuid.UUID
	unlocked  []achievement.Achievement
	err       error
}

func (f *fakeHabits) GetDashboard(ctx context.Context, clerkID string) (*streak.Dashboard, error) {
	return f.dash, f.err
}

func (f *fakeHabits) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &habit.Habit{ID: uuid.New(), Name: req.Name, Frequency: req.Frequency}, nil
}

func (f *fakeHabits) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	return f.err
}

func (f *fakeHabits) CompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*services.CompletionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.completed = habitID
	return &services.CompletionResult{Dashboard: f.dash, Unlocked: f.unlocked}, nil
}

func (f *fakeHabits) UncompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*services.CompletionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.CompletionResult{Dashboard: f.dash, Unlocked: []achievement.Achievement{}}, nil
}

func habitRouter(store HabitStore) *mux.Router {
	h := NewHabitHandler(store)
	r := mux.NewRouter()
	r.HandleFunc("/habits", h.GetDashboard).Methods(http.MethodGet)
	r.HandleFunc("/habits", h.CreateHabit).Methods(http.MethodPost)
	r.HandleFunc("/habits/{id}", h.DeleteHabit).Methods(http.MethodDelete)
	r.HandleFunc("/habits/{id}/complete", h.CompleteHabit).Methods(http.MethodPost)
	r.HandleFunc("/habits/{id}/complete", h.UncompleteHabit).Methods(http.MethodDelete)
	return r
}

func sampleDashboard() *streak.Dashboard {
	views := []streak.HabitView{
		{ID: uuid.New(), Title: "Read", Category: "Daily", Streak: 3, CompletedToday: true, Progress: 30},
	}
	today := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	return &streak.Dashboard{
		Habits:     views,
		Weekly:     streak.ComputeWeeklySeries(views, today),
		Categories: streak.ComputeCategorySeries(views),
	}
}

func TestGetDashboard(t *testing.T) {
	store := &fakeHabits{dash: sampleDashboard()}
	router := habitRouter(store)

	rec := serve(router, authed(httptest.NewRequest(http.MethodGet, "/habits", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got streak.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Habits, 1)
	assert.Equal(t, 3, got.Habits[0].Streak)
	assert.Len(t, got.Weekly, 7)
	assert.Equal(t, "Sat", got.Weekly[6].Label)
	assert.Equal(t, 1, got.Weekly[6].Completed)
}

func TestHabitRoutesRequireAuth(t *testing.T) {
	router := habitRouter(&fakeHabits{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/habits", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/habits/"+uuid.NewString()+"/complete", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateHabit(t *testing.T) {
	store := &fakeHabits{}
	router := habitRouter(store)

	body := `{"name": "Meditate", "frequency": "weekly"}`
	rec := serve(router, authed(httptest.NewRequest(http.MethodPost, "/habits", strings.NewReader(body))))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, store.created)
	assert.Equal(t, "Meditate", store.created.Name)
	assert.Equal(t, habit.FrequencyWeekly, store.created.Frequency)
}

func TestCreateHabitBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		msg  string
	}{
		{"empty body", "", nil, "request body is empty"},
		{"malformed", `{"name":`, nil, ""},
		{"unknown field", `{"name": "x", "color": "red"}`, nil, ""},
		{"validation", `{"name": ""}`, fmt.Errorf("%w: %s", services.ErrInvalidInput, "Name is required"), "Name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := habitRouter(&fakeHabits{err: tt.err})

			rec := serve(router, authed(httptest.NewRequest(http.MethodPost, "/habits", strings.NewReader(tt.body))))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errorBody(t, rec))
			}
		})
	}
}

func TestDeleteHabit(t *testing.T) {
	router := habitRouter(&fakeHabits{})
	rec := serve(router, authed(httptest.NewRequest(http.MethodDelete, "/habits/"+uuid.NewString(), nil)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, authed(httptest.NewRequest(http.MethodDelete, "/habits/not-a-uuid", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid habit ID", errorBody(t, rec))

	router = habitRouter(&fakeHabits{err: services.ErrHabitNotFound})
	rec = serve(router, authed(httptest.NewRequest(http.MethodDelete, "/habits/"+uuid.NewString(), nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Habit not found", errorBody(t, rec))
}

func TestCompleteHabit(t *testing.T) {
	value := 3
	store := &fakeHabits{
		dash: sampleDashboard(),
		unlocked: []achievement.Achievement{
			{ID: uuid.New(), Title: "Three in a row", ConditionType: achievement.ConditionDailyStreak, ConditionValue: &value},
		},
	}
	router := habitRouter(store)
	habitID := uuid.New()

	rec := serve(router, authed(httptest.NewRequest(http.MethodPost, "/habits/"+habitID.String()+"/complete", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, habitID, store.completed)

	var got struct {
		Dashboard streak.Dashboard          `json:"dashboard"`
		Unlocked  []achievement.Achievement `json:"unlockedAchievements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Dashboard.Habits, 1)
	require.Len(t, got.Unlocked, 1)
	assert.Equal(t, "Three in a row", got.Unlocked[0].Title)
}

func TestUncompleteHabit(t *testing.T) {
	router := habitRouter(&fakeHabits{dash: sampleDashboard()})
	rec := serve(router, authed(httptest.NewRequest(http.MethodDelete, "/habits/"+uuid.NewString()+"/complete", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	// same envelope as completing
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "dashboard")
	assert.JSONEq(t, `[]`, string(got["unlockedAchievements"]))

	router = habitRouter(&fakeHabits{err: errors.New("connection refused")})
	rec = serve(router, authed(httptest.NewRequest(http.MethodDelete, "/habits/"+uuid.NewString()+"/complete", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to uncomplete habit", errorBody(t, rec))
}

type fakeUsers struct {
	profile *user.User
	stats   *stats.UserStats
	err     error
	deleted string
	device  *user.RegisterDeviceRequest
}

func (f *fakeUsers) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return f.profile, f.err
}

func (f *fakeUsers) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	f.deleted = clerkID
	return f.err
}

func (f *fakeUsers) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	return f.stats, f.err
}

func (f *fakeUsers) RegisterDevice(ctx context.Context, clerkID string, req *user.RegisterDeviceRequest) error {
	f.device = req
	return f.err
}

func TestUserHandler(t *testing.T) {
	store := &fakeUsers{
		profile: &user.User{ClerkID: testClerkID, Username: "tester", Role: user.RoleUser},
		stats:   &stats.UserStats{TotalHabits: 2, BestStreak: 5},
	}
	h := NewUserHandler(store)

	rec := httptest.NewRecorder()
	h.GetProfile(rec, authed(httptest.NewRequest(http.MethodGet, "/user", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"tester"`)

	rec = httptest.NewRecorder()
	h.GetUserStats(rec, authed(httptest.NewRequest(http.MethodGet, "/user/stats", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bestStreak":5`)

	rec = httptest.NewRecorder()
	h.DeleteAccount(rec, authed(httptest.NewRequest(http.MethodDelete, "/user", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testClerkID, store.deleted)
}

func TestUserHandlerNotFound(t *testing.T) {
	h := NewUserHandler(&fakeUsers{err: services.ErrUserNotFound})

	rec := httptest.NewRecorder()
	h.GetProfile(rec, authed(httptest.NewRequest(http.MethodGet, "/user", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", errorBody(t, rec))
}

func TestRegisterDevice(t *testing.T) {
	store := &fakeUsers{}
	h := NewNotificationHandler(store)

	body := `{"token": "fcm-token", "platform": "ios"}`
	rec := httptest.NewRecorder()
	h.RegisterDevice(rec, authed(httptest.NewRequest(http.MethodPost, "/user/devices", strings.NewReader(body))))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.device)
	assert.Equal(t, "fcm-token", store.device.Token)
	assert.Equal(t, "ios", store.device.Platform)
}

type fakeAchievements struct {
	defs       []achievement.Achievement
	earned     []achievement.UserAchievement
	gotCursor  achievement.Cursor
	createdReq *achievement.CreateAchievementRequest
	err        error
}

func (f *fakeAchievements) ListAchievements(ctx context.Context) ([]achievement.Achievement, error) {
	return f.defs, f.err
}

func (f *fakeAchievements) CreateAchievement(ctx context.Context, req *achievement.CreateAchievementRequest) (*achievement.Achievement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createdReq = req
	return &achievement.Achievement{ID: uuid.New(), Title: req.Title}, nil
}

func (f *fakeAchievements) GetUserAchievements(ctx context.Context, clerkID string) ([]achievement.UserAchievement, error) {
	return f.earned, f.err
}

func (f *fakeAchievements) GetNewAchievements(ctx context.Context, clerkID string, cursor achievement.Cursor) ([]achievement.UserAchievement, achievement.Cursor, error) {
	f.gotCursor = cursor
	fresh, next := cursor.Advance(f.earned)
	return fresh, next, f.err
}

func TestGetNewAchievements(t *testing.T) {
	since := time.Date(2024, 1, 13, 10, 0, 0, 0, time.UTC)
	later := since.Add(time.Minute)
	store := &fakeAchievements{earned: []achievement.UserAchievement{
		{ID: uuid.New(), EarnedAt: since.Add(-time.Minute)},
		{ID: uuid.New(), EarnedAt: later},
	}}
	h := NewAchievementHandler(store)

	rec := httptest.NewRecorder()
	h.GetNewAchievements(rec, authed(httptest.NewRequest(http.MethodGet, "/user/achievements/new?since="+since.Format(time.RFC3339), nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, since, store.gotCursor.LastChecked)

	var got newAchievementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Achievements, 1)
	assert.True(t, later.Equal(got.Cursor))
}

func TestGetNewAchievementsDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)
	store := &fakeAchievements{}
	h := NewAchievementHandler(store)
	h.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	h.GetNewAchievements(rec, authed(httptest.NewRequest(http.MethodGet, "/user/achievements/new", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now, store.gotCursor.LastChecked)
	assert.Contains(t, rec.Body.String(), `"achievements":[]`)
}

func TestGetNewAchievementsBadSince(t *testing.T) {
	h := NewAchievementHandler(&fakeAchievements{})

	rec := httptest.NewRecorder()
	h.GetNewAchievements(rec, authed(httptest.NewRequest(http.MethodGet, "/user/achievements/new?since=yesterday", nil)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAchievement(t *testing.T) {
	store := &fakeAchievements{}
	h := NewAchievementHandler(store)

	body := `{"title": "Week Warrior", "description": "7 days", "conditionType": "daily_streak", "conditionValue": 7}`
	rec := httptest.NewRecorder()
	h.CreateAchievement(rec, httptest.NewRequest(http.MethodPost, "/admin/achievements", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, store.createdReq.ConditionValue)
	assert.Equal(t, 7, *store.createdReq.ConditionValue)

	store.err = fmt.Errorf("%w: %s", services.ErrInvalidInput, "Title is required")
	rec = httptest.NewRecorder()
	h.CreateAchievement(rec, httptest.NewRequest(http.MethodPost, "/admin/achievements", strings.NewReader(`{"description": "x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title is required", errorBody(t, rec))
}

type fakeAdmin struct {
	stats   *stats.AppStats
	rows    []user.AdminUserRow
	search  string
	deleted uuid.UUID
	err     error
}

func (f *fakeAdmin) GetStats(ctx context.Context) (*stats.AppStats, error) {
	return f.stats, f.err
}

func (f *fakeAdmin) ListUsers(ctx context.Context, search string) ([]user.AdminUserRow, error) {
	f.search = search
	return f.rows, f.err
}

func (f *fakeAdmin) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	f.deleted = userID
	return f.err
}

func TestAdminHandler(t *testing.T) {
	store := &fakeAdmin{
		stats: &stats.AppStats{TotalUsers: 4, ActiveUsers: 1, ActiveRate: 25},
		rows:  []user.AdminUserRow{{Name: "Jane", Status: user.StatusActive}},
	}
	h := NewAdminHandler(store)
	r := mux.NewRouter()
	r.HandleFunc("/admin/stats", h.GetStats)
	r.HandleFunc("/admin/users", h.ListUsers)
	r.HandleFunc("/admin/users/{id}", h.DeleteUser).Methods(http.MethodDelete)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activeRate":25`)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/users?search=jan", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jan", store.search)
	assert.Contains(t, rec.Body.String(), `"status":"active"`)

	id := uuid.New()
	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/users/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, store.deleted)

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/users/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeWebhookUsers struct {
	created   *user.CreateUserRequest
	updated   string
	update    *user.UpdateProfileRequest
	deleted   string
	updateErr error
	deleteErr error
}

func (f *fakeWebhookUsers) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	f.created = req
	return &user.User{ClerkID: req.ClerkID}, nil
}

func (f *fakeWebhookUsers) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	f.updated = clerkID
	f.update = req
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &user.User{ClerkID: clerkID}, nil
}

func (f *fakeWebhookUsers) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	f.deleted = clerkID
	return f.deleteErr
}

// whsec_ secret whose key is the bytes "test-signing-key"
const testWebhookSecret = "whsec_dGVzdC1zaWduaW5nLWtleQ=="

func signedRequest(t *testing.T, body string, at time.Time) *http.Request {
	t.Helper()
	wh, err := svix.NewWebhook(testWebhookSecret)
	require.NoError(t, err)
	sig, err := wh.Sign("msg_1", at, []byte(body))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", fmt.Sprintf("%d", at.Unix()))
	// a rotated-out key's signature listed first must not cause a rejection
	req.Header.Set("svix-signature", "v1,bm90LXRoaXMtb25l "+sig)
	return req
}

func newWebhookHandler(t *testing.T, store WebhookUserStore, secret string) *WebhookHandler {
	t.Helper()
	h, err := NewWebhookHandler(store, secret)
	require.NoError(t, err)
	return h
}

func TestClerkWebhookUserCreated(t *testing.T) {
	now := time.Now()
	store := &fakeWebhookUsers{}
	h := newWebhookHandler(t, store, testWebhookSecret)

	body := `{"type": "user.created", "object": "event", "data": {"id": "user_1", "username": "janed",
		"email_addresses": [{"id": "e1", "email_address": "jane@example.com"}], "primary_email_address_id": "e1"}}`

	rec := httptest.NewRecorder()
	h.HandleClerkWebhook(rec, signedRequest(t, body, now))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.created)
	assert.Equal(t, "user_1", store.created.ClerkID)
	assert.Equal(t, "jane@example.com", store.created.Email)
}

func TestClerkWebhookRejectsBadSignatures(t *testing.T) {
	now := time.Now()
	store := &fakeWebhookUsers{}
	h := newWebhookHandler(t, store, testWebhookSecret)
	body := `{"type": "user.deleted", "data": {"id": "user_1"}}`

	tampered := signedRequest(t, body, now)
	tampered.Body = io.NopCloser(strings.NewReader(strings.Replace(body, "user_1", "user_2", 1)))
	rec := httptest.NewRecorder()
	h.HandleClerkWebhook(rec, tampered)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stale := signedRequest(t, body, now.Add(-time.Hour))
	rec = httptest.NewRecorder()
	h.HandleClerkWebhook(rec, stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	missing := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.HandleClerkWebhook(rec, missing)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, store.deleted)
}

func TestClerkWebhookUpdateSyncsEmail(t *testing.T) {
	store := &fakeWebhookUsers{}
	h := newWebhookHandler(t, store, "")

	body := `{"type": "user.updated", "data": {"id": "user_3", "username": "mover",
		"primary_email_address_id": "e2",
		"email_addresses": [{"id": "e1", "email_address": "old@example.com"}, {"id": "e2", "email_address": "new@example.com"}]}}`
	rec := httptest.NewRecorder()
	h.HandleClerkWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.update)
	assert.Equal(t, "new@example.com", store.update.Email)
	assert.Nil(t, store.created)
}

func TestClerkWebhookUpdateFallsBackToCreate(t *testing.T) {
	store := &fakeWebhookUsers{updateErr: services.ErrUserNotFound}
	h := newWebhookHandler(t, store, "")

	body := `{"type": "user.updated", "data": {"id": "user_7", "username": "late_joiner",
		"email_addresses": [{"id": "e", "email_address": "late@example.com"}]}}`
	rec := httptest.NewRecorder()
	h.HandleClerkWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_7", store.updated)
	require.NotNil(t, store.created)
	assert.Equal(t, "late_joiner", store.created.Username)
}

func TestClerkWebhookDeleteIsIdempotent(t *testing.T) {
	store := &fakeWebhookUsers{deleteErr: services.ErrUserNotFound}
	h := newWebhookHandler(t, store, "")

	rec := httptest.NewRecorder()
	h.HandleClerkWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		strings.NewReader(`{"type": "user.deleted", "data": {"id": "user_gone"}}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_gone", store.deleted)
}

func TestClerkWebhookMalformed(t *testing.T) {
	h := newWebhookHandler(t, &fakeWebhookUsers{}, "")

	rec := httptest.NewRecorder()
	h.HandleClerkWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(`not json`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewWebhookHandlerRejectsMalformedSecret(t *testing.T) {
	_, err := NewWebhookHandler(&fakeWebhookUsers{}, "whsec_%%%not-base64")
	assert.Error(t, err)
}
