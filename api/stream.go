package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"wish-wall/auth"
	"wish-wall/sink"

	"github.com/google/uuid"
)

func (h *Handler) QueueStream(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, h.moderation)
}

func (h *Handler) WallStream(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, h.broadcast)
}

// stream pushes every view of a feed as a Server-Sent Event until the client
// goes away. Comments are written between views to keep proxies from
// closing an idle connection.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, feed watchable) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	viewerID := fmt.Sprintf("%s/%s", auth.SessionID(ctx), uuid.NewString())
	viewSink := sink.NewViewSink()
	feed.Watch(ctx, viewerID, viewSink)
	defer feed.Unwatch(viewerID)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Viewer disconnected", "viewer_id", viewerID)
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case view := <-viewSink.Views():
			data, err := json.Marshal(view)
			if err != nil {
				h.log.Warn("Failed to marshal view", "viewer_id", viewerID, "error", err)
				continue
			}
			if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", view.Feed(), data); err != nil {
				h.log.Warn("Failed to push view", "viewer_id", viewerID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
