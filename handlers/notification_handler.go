package handlers

import (
	"context"
	"net/http"
	"time"

	"itrackerAPI/internal/user"
	"itrackerAPI/middleware"
)

type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context, clerkID string, req *user.RegisterDeviceRequest) error
}

type NotificationHandler struct {
	devices DeviceRegistrar
}

func NewNotificationHandler(devices DeviceRegistrar) *NotificationHandler {
	return &NotificationHandler{
		devices: devices,
	}
}

// POST /api/v1/user/devices - register a push token for achievement notifications
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.RegisterDeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.devices.RegisterDevice(ctx, clerkID, &req); err != nil {
		respondWithServiceError(w, err, "Failed to register device")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
