package repository

import (
	"context"
	"errors"

	"mindcare-be/internal/entities"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned by Create when the email is already registered
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository defines the credential store contract. Create must be
// durable before it returns, and concurrent creates with the same email must
// let at most one succeed.
type AccountRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*entities.Account, error)
	FindByEmail(ctx context.Context, email string) (*entities.Account, error)
	FindByID(ctx context.Context, id string) (*entities.Account, error)
}
