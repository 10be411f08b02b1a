package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casevault/internal/identity/models"
	id "casevault/pkg/domain"
	"casevault/pkg/platform/httputil"
	"casevault/pkg/requestcontext"
)

// Service defines the identity operations the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	Get(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.User, error)
	ListPending(ctx context.Context) ([]*models.User, error)
	Approve(ctx context.Context, userID id.UserID, role string) (*models.User, error)
	Reject(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterPublic mounts the unauthenticated account routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
}

// Register mounts routes for any signed-in user.
func (h *Handler) Register(r chi.Router) {
	r.Post("/logout", h.HandleLogout)
	r.Get("/users/{id}", h.HandleGetUser)
	r.Put("/users/{id}", h.HandleUpdateProfile)
}

// RegisterAdmin mounts the approval queue routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/pending-users", h.HandleListPending)
	r.Put("/approve-user/{id}", h.HandleApprove)
	r.Delete("/reject-user/{id}", h.HandleReject)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.svc.Register(ctx, req.toModel())
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, UserEnvelope{
		Message: "Registration successful. Pending admin approval.",
		User:    toUserResponse(user),
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	session, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.User),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.Logout(ctx); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.svc.Get(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.svc.UpdateProfile(ctx, userID, models.ProfileUpdate{
		Email:      req.Email,
		FullName:   req.FullName,
		BatchID:    req.BatchID,
		Department: req.Department,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "profile update failed",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UserEnvelope{Message: "Profile updated", User: toUserResponse(user)})
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.svc.ListPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list pending users",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// The body is optional; an empty one approves as a plain user.
	role := ""
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[ApproveUserRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		role = req.Role
	}
	user, err := h.svc.Approve(ctx, userID, role)
	if err != nil {
		h.logger.WarnContext(ctx, "user approval failed",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UserEnvelope{Message: "User approved successfully", User: toUserResponse(user)})
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.Reject(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "user rejection failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "User rejected and removed successfully"})
}
