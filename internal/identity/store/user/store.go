// Package user persists casevault accounts.
package user

import (
	"fmt"

	"casevault/pkg/platform/sentinel"
)

var (
	ErrNotFound      = sentinel.ErrNotFound
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", sentinel.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
)
