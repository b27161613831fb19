package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/infinai/infinai/internal/middleware"
	"github.com/infinai/infinai/internal/service"
)

// SubscribeRequest is the JSON body of POST /api/subscribe.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// SubscribeResponse is returned on success.
type SubscribeResponse struct {
	Success bool `json:"success"`
}

// SubscribeHandler handles newsletter sign-ups.
type SubscribeHandler struct {
	svc    *service.SubscriptionService
	logger *slog.Logger
}

// NewSubscribeHandler creates a new SubscribeHandler.
func NewSubscribeHandler(svc *service.SubscriptionService, logger *slog.Logger) *SubscribeHandler {
	return &SubscribeHandler{svc: svc, logger: logger}
}

// Subscribe handles POST /api/subscribe. It accepts a JSON body or a
// plain form post from the footer when scripts are off.
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w, r)
		return
	}

	email, ok := readEmail(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("subscriber_created", "subscriber_id", sub.ID)
	writeJSON(w, http.StatusOK, SubscribeResponse{Success: true})
}

func readEmail(r *http.Request) (string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return "", false
		}
		return r.PostForm.Get("email"), true
	default:
		var req SubscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", false
		}
		return req.Email, true
	}
}

func (h *SubscribeHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "Valid email is required")
	case errors.Is(err, service.ErrAlreadySubscribed):
		writeError(w, http.StatusBadRequest, "Email is already subscribed")
	default:
		h.logger.Error("subscription_failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "An error occurred while saving your subscription")
	}
}
