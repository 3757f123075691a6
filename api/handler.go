package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
	"wish-wall/auth"
	"wish-wall/contract"
	"wish-wall/domain/wall"
	"wish-wall/errors"
	"wish-wall/services"
)

// DefaultHeartbeat is the interval of SSE keep-alive comments.
const DefaultHeartbeat = 15 * time.Second

type watchable interface {
	Watch(ctx context.Context, viewerID string, sink contract.ViewSink)
	Unwatch(viewerID string)
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	issuer     *auth.Issuer
	submission services.ISubmissionService
	moderation services.IModerationService
	broadcast  services.IBroadcastService
	registry   contract.IRegistry
	links      wall.GuestLinks
	heartbeat  time.Duration
	log        *slog.Logger
}

func NewHandler(
	log *slog.Logger,
	issuer *auth.Issuer,
	submission services.ISubmissionService,
	moderation services.IModerationService,
	broadcast services.IBroadcastService,
	registry contract.IRegistry,
	links wall.GuestLinks,
	heartbeat time.Duration,
) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{
		issuer:     issuer,
		submission: submission,
		moderation: moderation,
		broadcast:  broadcast,
		registry:   registry,
		links:      links,
		heartbeat:  heartbeat,
		log:        log,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("Failed to encode response", "error", err)
	}
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, ErrorResponse{Error: message})
}

// Fail maps a domain error to its HTTP status and tells the caller whether
// the same request may be sent again.
func (h *Handler) Fail(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
	}
	h.JSON(w, status, ErrorResponse{Error: err.Error(), Retryable: errors.Retryable(err)})
}
