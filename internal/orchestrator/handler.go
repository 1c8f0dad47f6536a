package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aiox-platform/persona/internal/api"
	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/memory"
	"github.com/aiox-platform/persona/internal/persona"
)

const maxStatisticsLimit = 1000

// HistoryDetector is satisfied by *convcontext.Detector.
type HistoryDetector interface {
	DetectHistoricalContexts(ctx context.Context, userID string, limit int) ([]convcontext.ConversationContext, error)
}

type PrepareRequest struct {
	UserID   string               `json:"user_id" validate:"required,max=255"`
	Message  string               `json:"message" validate:"required"`
	Metadata convcontext.Metadata `json:"metadata"`
}

type RecordRequest struct {
	UserID   string                           `json:"user_id" validate:"required,max=255"`
	Metadata convcontext.Metadata             `json:"metadata"`
	Turn     memory.Turn                      `json:"turn"`
	Context  *convcontext.ConversationContext `json:"context,omitempty"`
}

type Handler struct {
	pipeline *Pipeline
	history  HistoryDetector
	validate *validator.Validate
}

func NewHandler(pipeline *Pipeline, history HistoryDetector) *Handler {
	return &Handler{
		pipeline: pipeline,
		history:  history,
		validate: validator.New(),
	}
}

func (h *Handler) Prepare(w http.ResponseWriter, r *http.Request) {
	var req PrepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	prepared, err := h.pipeline.Prepare(r.Context(), req.UserID, req.Message, req.Metadata)
	if errors.Is(err, persona.ErrProfileNotFound) {
		api.HandleError(w, api.ErrProfileNotFound)
		return
	}
	if err != nil {
		slog.Error("preparing turn", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, prepared)
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	err := h.pipeline.Record(r.Context(), req.UserID, req.Metadata, req.Turn, req.Context)
	if errors.Is(err, memory.ErrInvalidTurn) {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}
	if err != nil {
		slog.Error("recording turn", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusCreated, "turn recorded")
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxStatisticsLimit {
			api.HandleError(w, api.NewBadRequestError("limit must be between 1 and 1000"))
			return
		}
		limit = n
	}

	contexts, err := h.history.DetectHistoricalContexts(r.Context(), userID, limit)
	if errors.Is(err, convcontext.ErrNoHistory) {
		api.HandleError(w, api.ErrNoHistory)
		return
	}
	if err != nil {
		slog.Error("detecting historical contexts", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, convcontext.ContextStatistics(contexts))
}
