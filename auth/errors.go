package auth

import "errors"

// Sentinel errors for token issuance and verification.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrEmptySecret        = errors.New("auth: signing secret is empty")
	ErrMissingSubject     = errors.New("auth: client id is required")
)
