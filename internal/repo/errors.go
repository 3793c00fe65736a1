package repo

import "errors"

// Sentinel errors for the storage layer. Handlers match these with errors.Is
// to pick a status code; anything else is treated as an internal failure.
var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrUserNotFound      = errors.New("user not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrSelfMessage       = errors.New("cannot message yourself")
)
