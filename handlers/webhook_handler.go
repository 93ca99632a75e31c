package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	svix "github.com/svix/svix-webhooks/go"

	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/user"
	"itrackerAPI/services"
)

type WebhookUserStore interface {
	CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

type WebhookHandler struct {
	userService WebhookUserStore
	verifier    *svix.Webhook
}

// NewWebhookHandler verifies deliveries with secret, the Clerk "whsec_" signing
// secret. An empty secret turns verification off for local development.
func NewWebhookHandler(userService WebhookUserStore, secret string) (*WebhookHandler, error) {
	h := &WebhookHandler{userService: userService}
	if secret == "" {
		return h, nil
	}

	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	h.verifier = wh
	return h, nil
}

// POST /webhooks/clerk
func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("Error reading webhook body", "error", err)
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if err := h.verifySignature(r.Header, body); err != nil {
		logger.Warn("Invalid webhook signature", "error", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event user.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warn("Error parsing webhook", "error", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	logger.Info("Received webhook event", "type", event.Type)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	switch event.Type {
	case "user.created":
		err = h.handleUserCreated(ctx, event.Data)
	case "user.updated":
		err = h.handleUserUpdated(ctx, event.Data)
	case "user.deleted":
		err = h.handleUserDeleted(ctx, event.Data)
	default:
		logger.Debug("Unhandled webhook event type", "type", event.Type)
	}
	if err != nil {
		logger.Error("Error processing webhook", "type", event.Type, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	var userData user.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	u, err := h.userService.CreateUser(ctx, userData.ToCreateRequest())
	if err != nil {
		return fmt.Errorf("failed to create user in database: %w", err)
	}

	logger.Info("Successfully created user", "clerk_id", u.ClerkID)
	return nil
}

func (h *WebhookHandler) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	var userData user.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	req := userData.ToCreateRequest()
	_, err := h.userService.UpdateProfileByClerkID(ctx, userData.ID, &user.UpdateProfileRequest{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
	})
	if errors.Is(err, services.ErrUserNotFound) {
		// The created event was missed; provision from the update instead.
		_, err = h.userService.CreateUser(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	logger.Info("Successfully updated user", "clerk_id", userData.ID)
	return nil
}

func (h *WebhookHandler) handleUserDeleted(ctx context.Context, data json.RawMessage) error {
	var userData struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	err := h.userService.DeleteUserByClerkID(ctx, userData.ID)
	// Admin deletions remove the local row before Clerk reports it.
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.Info("Successfully deleted user", "clerk_id", userData.ID)
	return nil
}

// verifySignature checks the svix headers Clerk signs every delivery with.
func (h *WebhookHandler) verifySignature(header http.Header, body []byte) error {
	if h.verifier == nil {
		logger.Warn("CLERK_WEBHOOK_SECRET not set, skipping signature verification")
		return nil
	}
	return h.verifier.Verify(body, header)
}
