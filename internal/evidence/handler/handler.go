package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"casevault/internal/blob"
	"casevault/internal/evidence/models"
	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

const maxMultipartMemory = 8 << 20

type Service interface {
	AddEvidence(ctx context.Context, title, description, fileHash, uploadedBy string, caseID id.CaseID) (*models.Evidence, error)
	ListEvidenceForCase(ctx context.Context, caseID id.CaseID) ([]*models.Evidence, error)
	SubmitEvidence(ctx context.Context, sub models.Submission) (*models.Receipt, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/add-evidence", h.HandleAddEvidence)
	r.Post("/cases/{caseId}/evidence/submit", h.HandleSubmitEvidence)
	r.Get("/evidence/{caseId}", h.HandleListEvidence)
}

func (h *Handler) HandleAddEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddEvidenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if !uploadingAsSelf(ctx, req.UploadedBy) {
		httputil.WriteError(w, errForeignUploader)
		return
	}
	e, err := h.svc.AddEvidence(ctx, req.Title, req.Description, req.FileHash, req.UploadedBy, req.caseID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add evidence",
			"request_id", requestID,
			"case_id", req.CaseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AddEvidenceResponse{
		Message:  "Evidence added successfully",
		Evidence: toCreated(e),
	})
}

// HandleSubmitEvidence accepts a multipart upload: an "attachment" file part,
// title, description and uploadedBy fields and an optional "metadata" field
// holding a JSON object.
func (h *Handler) HandleSubmitEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := readSubmission(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid evidence submission",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if !uploadingAsSelf(ctx, sub.UploadedBy) {
		httputil.WriteError(w, errForeignUploader)
		return
	}
	sub.CaseID = caseID

	receipt, err := h.svc.SubmitEvidence(ctx, *sub)
	if err != nil {
		h.logger.ErrorContext(ctx, "evidence submission failed",
			"request_id", requestID,
			"case_id", caseID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, SubmitEvidenceResponse{
		Message:        "Evidence anchored and recorded",
		Evidence:       toCreated(receipt.Evidence),
		AttachmentHash: receipt.AttachmentHash,
		MetadataHash:   receipt.MetadataHash,
		TransactionID:  receipt.TransactionID,
	})
}

var errForeignUploader = dErrors.New(dErrors.CodeForbidden, "cannot file evidence for another user")

// uploadingAsSelf reports whether the caller may file evidence under uploadedBy.
func uploadingAsSelf(ctx context.Context, uploadedBy string) bool {
	return requestcontext.IsAdmin(ctx) || requestcontext.UserID(ctx).String() == uploadedBy
}

func readSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, blob.MaxSize+(1<<20))
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeValidation, "attachment is too large")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form")
	}

	file, header, err := r.FormFile("attachment")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "attachment is required")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read attachment")
	}

	sub := &models.Submission{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		UploadedBy:  strings.TrimSpace(r.FormValue("uploadedBy")),
		FileName:    header.Filename,
		Attachment:  data,
	}
	if raw := strings.TrimSpace(r.FormValue("metadata")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Metadata); err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "metadata must be a JSON object")
		}
	}
	return sub, nil
}

func (h *Handler) HandleListEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.svc.ListEvidenceForCase(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]EvidenceResponse, len(records))
	for i, e := range records {
		out[i] = toEvidenceResponse(e)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
