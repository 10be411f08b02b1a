package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casevault/internal/activity/models"
	"casevault/internal/activity/service"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

type Service interface {
	Log(ctx context.Context, in service.Input) (*models.Entry, error)
	LogBatch(ctx context.Context, inputs []service.Input) ([]models.Entry, error)
	List(ctx context.Context) ([]models.View, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/log-activity", h.HandleLog)
	r.Post("/log-activity-batch", h.HandleLogBatch)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/logs", h.HandleList)
}

// actingAsSelf reports whether a non-admin caller logs under their own id.
func actingAsSelf(ctx context.Context, userID string) bool {
	return requestcontext.IsAdmin(ctx) || requestcontext.UserID(ctx).String() == userID
}

func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LogActivityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if !actingAsSelf(ctx, req.UserID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot log activity for another user"))
		return
	}
	e, err := h.svc.Log(ctx, req.input())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to log activity",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, LogResponse{
		Message: "Activity logged successfully",
		Log:     toActivityResponse(*e, requestcontext.Username(ctx)),
	})
}

func (h *Handler) HandleLogBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LogActivityBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	inputs := make([]service.Input, len(req.Entries))
	for i, e := range req.Entries {
		if !actingAsSelf(ctx, e.UserID) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot log activity for another user"))
			return
		}
		inputs[i] = e.input()
	}
	entries, err := h.svc.LogBatch(ctx, inputs)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to log activity batch",
			"request_id", requestID,
			"entries", len(inputs),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, BatchResponse{
		Message: "Activity batch logged successfully",
		Count:   len(entries),
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.svc.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list activity",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	out := make([]ActivityResponse, len(views))
	for i, v := range views {
		out[i] = toActivityResponse(v.Entry, v.Username)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
