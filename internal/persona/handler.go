package persona

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aiox-platform/persona/internal/api"
	inats "github.com/aiox-platform/persona/internal/nats"
)

// ProfileEvents fans cache invalidations out to the other replicas.
type ProfileEvents interface {
	PublishProfileUpdated(ctx context.Context, event inats.ProfileUpdatedEvent) error
}

type Handler struct {
	selector *Selector
	events   ProfileEvents
}

// NewHandler creates a Handler. events may be nil, in which case only this
// replica's cache is affected.
func NewHandler(selector *Selector, events ProfileEvents) *Handler {
	return &Handler{selector: selector, events: events}
}

func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	h.selector.Invalidate(userID)
	h.announce(r.Context(), userID)
	api.JSONMessage(w, http.StatusOK, "persona cache entry invalidated")
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.selector.ClearCache()
	h.announce(r.Context(), "")
	api.JSONMessage(w, http.StatusOK, "persona cache cleared")
}

func (h *Handler) announce(ctx context.Context, userID string) {
	if h.events == nil {
		return
	}
	event := inats.ProfileUpdatedEvent{UserID: userID, Timestamp: time.Now().UTC()}
	if err := h.events.PublishProfileUpdated(ctx, event); err != nil {
		slog.Warn("publishing profile update", "error", err, "user_id", userID)
	}
}
