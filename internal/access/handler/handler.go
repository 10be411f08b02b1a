package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casevault/internal/access/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

type Service interface {
	RequestAccess(ctx context.Context, userID id.UserID, caseID id.CaseID) (*models.AccessRequest, error)
	ListPendingAccessRequests(ctx context.Context) ([]models.PendingView, error)
	ApproveAccess(ctx context.Context, requestID id.AccessRequestID) (*models.AccessRequest, error)
	RejectAccess(ctx context.Context, requestID id.AccessRequestID) error
	ListCasesWithAccess(ctx context.Context, userID id.UserID) ([]models.CaseAccess, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/request-access", h.HandleRequestAccess)
	r.Get("/cases-with-access/{userId}", h.HandleCasesWithAccess)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/pending-access-requests", h.HandleListPending)
	r.Put("/approve-access/{id}", h.HandleApprove)
	r.Delete("/reject-access/{id}", h.HandleReject)
}

func (h *Handler) HandleRequestAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestAccessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if !requestcontext.CanActAs(ctx, req.userID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot request access on behalf of another user"))
		return
	}
	created, err := h.svc.RequestAccess(ctx, req.userID, req.caseID)
	if err != nil {
		h.logger.WarnContext(ctx, "access request failed",
			"request_id", requestID,
			"user_id", req.userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AccessEnvelope{
		Message: "Access request submitted successfully",
		Request: toAccessResponse(created),
	})
}

func (h *Handler) HandleCasesWithAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !requestcontext.CanActAs(ctx, userID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot list cases for another user"))
		return
	}
	rows, err := h.svc.ListCasesWithAccess(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list cases with access",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	out := make([]CaseWithAccessResponse, len(rows))
	for i, row := range rows {
		out[i] = toCaseWithAccess(row)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.svc.ListPendingAccessRequests(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]PendingAccessResponse, len(views))
	for i := range views {
		out[i] = PendingAccessResponse{
			AccessRequestResponse: toAccessResponse(&views[i].AccessRequest),
			FullName:              views[i].RequesterFullName,
			CaseTitle:             views[i].CaseTitle,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	approved, err := h.svc.ApproveAccess(ctx, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "access approval failed",
			"request_id", requestcontext.RequestID(ctx),
			"access_request_id", requestID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AccessEnvelope{
		Message: "Access approved",
		Request: toAccessResponse(approved),
	})
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.RejectAccess(ctx, requestID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Access request rejected"})
}
