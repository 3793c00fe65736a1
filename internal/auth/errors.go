package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords;
	// callers never learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers missing, malformed, forged, and expired tokens,
	// and tokens whose subject no longer resolves to an account.
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden means the identity is valid but does not own the resource.
	ErrForbidden = errors.New("forbidden")
)
