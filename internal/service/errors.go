package service

import "errors"

// Client-visible failure classes. Handlers map these to HTTP statuses with
// errors.Is; the wrapped oops error carries the detail for logs.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInternal           = errors.New("internal error")
)
