package user

import "errors"

// Storage outcomes shared by every repository implementation.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("user email already exists")
)
