package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casevault/internal/ledger"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

type QueryTransactionRequest struct {
	TransactionID string `json:"transactionId" validate:"required,hexadecimal"`
}

type QueryTransactionResponse struct {
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
}

type AnchorRequest struct {
	NewHash string `json:"newHash" validate:"required,alphanum,max=128"`
}

type AnchorResponse struct {
	TransactionID string `json:"transactionId"`
}

type Handler struct {
	ledger ledger.Gateway
	logger *slog.Logger
}

func New(gw ledger.Gateway, logger *slog.Logger) *Handler {
	return &Handler{ledger: gw, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/query-transaction", h.HandleQueryTransaction)
	r.Post("/addEvidence", h.HandleAnchor)
}

func (h *Handler) HandleQueryTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[QueryTransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	tx, err := h.ledger.ResolveTransaction(ctx, req.TransactionID)
	if err != nil {
		h.logger.WarnContext(ctx, "ledger query failed",
			"request_id", requestID,
			"transaction_id", req.TransactionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, QueryTransactionResponse{Hash: tx.Hash, Timestamp: tx.Timestamp})
}

func (h *Handler) HandleAnchor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AnchorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	txID, err := h.ledger.AnchorHash(ctx, req.NewHash)
	if err != nil {
		h.logger.ErrorContext(ctx, "ledger anchor failed",
			"request_id", requestID,
			"hash", req.NewHash,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "hash anchored",
		"request_id", requestID,
		"user_id", requestcontext.UserID(ctx).String(),
		"transaction_id", txID,
	)
	httputil.WriteJSON(w, http.StatusOK, AnchorResponse{TransactionID: txID})
}
