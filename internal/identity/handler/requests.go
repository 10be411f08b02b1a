package handler

import (
	"time"

	"casevault/internal/identity/models"
)

type RegisterRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Password   string `json:"password" validate:"required" sanitize:"-"`
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"fullName" validate:"required"`
	BatchID    string `json:"batchId" validate:"required"`
	Department string `json:"department" validate:"required"`
}

func (r *RegisterRequest) toModel() models.Registration {
	return models.Registration{
		Username:   r.Username,
		Password:   r.Password,
		Email:      r.Email,
		FullName:   r.FullName,
		BatchID:    r.BatchID,
		Department: r.Department,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required" sanitize:"-"`
}

type ApproveUserRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=user admin"`
}

type UpdateProfileRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"fullName" validate:"required"`
	BatchID    string `json:"batchId" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	BatchID    string    `json:"batchId"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		BatchID:    u.BatchID,
		Department: u.Department,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt,
	}
}

type UserEnvelope struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
