package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casevault/internal/cases/models"
	"casevault/internal/cases/service"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

type Service interface {
	SubmitCaseRequest(ctx context.Context, title, description string, requestedBy id.UserID) (*models.CaseRequest, error)
	ApproveCaseRequest(ctx context.Context, requestID id.CaseRequestID) (*service.Approval, error)
	RejectCaseRequest(ctx context.Context, requestID id.CaseRequestID) (*models.CaseRequest, error)
	ListCaseRequests(ctx context.Context) ([]models.RequestView, error)
	GetCase(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	CloseCase(ctx context.Context, caseID id.CaseID) (*models.Case, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/request-case", h.HandleSubmit)
	r.Get("/cases/{caseId}", h.HandleGetCase)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/case-requests", h.HandleListRequests)
	// caseId here names the request being reviewed, matching the dashboard's routes.
	r.Post("/approve-case/{caseId}", h.HandleApprove)
	r.Post("/reject-case/{caseId}", h.HandleReject)
	r.Put("/cases/{caseId}/close", h.HandleClose)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if !requestcontext.CanActAs(ctx, req.requester) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot request a case on behalf of another user"))
		return
	}
	created, err := h.svc.SubmitCaseRequest(ctx, req.Title, req.Description, req.requester)
	if err != nil {
		h.logger.WarnContext(ctx, "case request failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		Message: "Case request submitted successfully",
		Request: toRequestResponse(created, requestcontext.Username(ctx)),
	})
}

func (h *Handler) HandleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.svc.GetCase(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.svc.ListCaseRequests(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list case requests",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	out := make([]CaseRequestResponse, len(views))
	for i := range views {
		out[i] = toRequestResponse(&views[i].CaseRequest, views[i].RequesterUsername)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, err := id.ParseCaseRequestID(chi.URLParam(r, "caseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	approval, err := h.svc.ApproveCaseRequest(ctx, reqID)
	if err != nil {
		h.logger.WarnContext(ctx, "case approval failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_request_id", reqID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ApprovalResponse{
		Message: "Case approved and access granted",
		Case:    toCaseResponse(approval.Case),
		Access:  toAccessResponse(approval.Access),
	})
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, err := id.ParseCaseRequestID(chi.URLParam(r, "caseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rejected, err := h.svc.RejectCaseRequest(ctx, reqID)
	if err != nil {
		h.logger.WarnContext(ctx, "case rejection failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_request_id", reqID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		Message: "Case request rejected",
		Request: toRequestResponse(rejected, ""),
	})
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.svc.CloseCase(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}
