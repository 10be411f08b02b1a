package models

import (
	"time"

	id "casevault/pkg/domain"
	dErrors "casevault/pkg/domain-errors"
)

// Role gates dashboard access. Self-registered users start pending and are
// promoted (or deleted) by an admin.
type Role string

const (
	RolePending Role = "pending"
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePending, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// ParseApprovalRole accepts the roles an admin may grant. Empty means user.
func ParseApprovalRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleUser, nil
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "role must be user or admin")
}

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           id.UserID
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	BatchID      string
	Department   string
	Role         Role
	CreatedAt    time.Time
}

func (u *User) IsPending() bool { return u.Role == RolePending }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Summary is the slice of a user other domains join into their listings.
type Summary struct {
	ID       id.UserID
	Username string
	FullName string
}

// Registration carries the fields a new account is created from.
type Registration struct {
	Username   string
	Password   string
	Email      string
	FullName   string
	BatchID    string
	Department string
}

// ProfileUpdate lists the mutable profile fields.
type ProfileUpdate struct {
	Email      string
	FullName   string
	BatchID    string
	Department string
}

// Session is the result of a successful login.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}
