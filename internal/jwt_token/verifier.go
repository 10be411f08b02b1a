package jwttoken

import (
	dErrors "casevault/pkg/domain-errors"
	authmw "casevault/pkg/platform/middleware/auth"
)

// Verifier returns the validator the auth middleware runs on every bearer
// token. Tokens without a jti cannot be revoked on logout and are refused.
func (s *JWTService) Verifier() authmw.JWTValidator {
	return verifier{s}
}

type verifier struct{ svc *JWTService }

func (v verifier) ValidateToken(token string) (*authmw.JWTClaims, error) {
	claims, err := v.svc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no id")
	}
	out := &authmw.JWTClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		JTI:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
