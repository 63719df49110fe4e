package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"mindcare-be/internal/entities"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entities.Account
	byEmail map[string]string
}

// NewMemoryAccountRepository creates an in-process account store
func NewMemoryAccountRepository() AccountRepository {
	return &memoryRepository{
		byID:    make(map[string]*entities.Account),
		byEmail: make(map[string]string),
	}
}

func (r *memoryRepository) Create(ctx context.Context, name, email, passwordHash string) (*entities.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, oops.Code("ACCOUNT_DUPLICATE_EMAIL").Wrap(ErrDuplicateEmail)
	}

	account := &entities.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[account.ID] = account
	r.byEmail[email] = account.ID

	copied := *account
	return &copied, nil
}

func (r *memoryRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(ErrAccountNotFound)
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (*entities.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id).Wrap(ErrAccountNotFound)
	}
	copied := *account
	return &copied, nil
}
