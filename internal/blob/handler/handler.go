package handler

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"casevault/internal/blob"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

var hashPattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,128}$`)

type Handler struct {
	blobs  blob.Store
	logger *slog.Logger
}

func New(blobs blob.Store, logger *slog.Logger) *Handler {
	return &Handler{blobs: blobs, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/blobs/{hash}", h.HandleFetch)
}

// HandleFetch streams a stored attachment or metadata document.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := chi.URLParam(r, "hash")
	if !hashPattern.MatchString(hash) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "hash must be an alphanumeric content id"))
		return
	}
	data, err := h.blobs.FetchBlob(ctx, hash)
	if err != nil {
		h.logger.WarnContext(ctx, "blob fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"hash", hash,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
