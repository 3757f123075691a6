package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/wall"

	"github.com/go-chi/chi/v5"
)

type SessionResponse struct {
	Token string `json:"token"`
}

type SubmitRequest struct {
	Text string `json:"text"`
}

type SubmitResponse struct {
	ID string `json:"id"`
}

type ClearResponse struct {
	Deleted int `json:"deleted"`
}

// ViewResponse tells a client which screen to render for the mode it was opened with.
type ViewResponse struct {
	Mode  wall.Mode        `json:"mode"`
	Links *wall.GuestLinks `json:"links,omitempty"`
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Viewers   map[string]int `json:"viewers"`
	Timestamp string         `json:"timestamp"`
}

// CreateSession mints an anonymous session token.
func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	token, sessionID, err := h.issuer.Issue()
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.log.Debug("Session created", "session_id", sessionID)
	h.JSON(w, http.StatusCreated, SessionResponse{Token: token})
}

func (h *Handler) Links(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, h.links)
}

// View resolves the mode query parameter. Unknown modes fall back to the landing screen.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	resp := ViewResponse{Mode: wall.ParseMode(r.URL.Query().Get(wall.ModeParam))}
	if resp.Mode == wall.Display {
		links := h.links
		resp.Links = &links
	}
	h.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := h.submission.Submit(r.Context(), req.Text)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusCreated, SubmitResponse{ID: id})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.moderation.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.moderation.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearAll deletes every wish. The confirm query parameter must be true.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	count, err := h.moderation.ClearAll(r.Context(), confirmed)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, ClearResponse{Deleted: count})
}

func (h *Handler) Queue(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, h.moderation.Current())
}

func (h *Handler) Wall(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, h.broadcast.Current())
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Viewers: map[string]int{
			string(contract.QueueFeed): h.registry.Count(contract.QueueFeed),
			string(contract.WallFeed):  h.registry.Count(contract.WallFeed),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
