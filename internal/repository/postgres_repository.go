package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/samber/oops"

	"mindcare-be/internal/entities"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresAccountRepository creates an account store backed by the users table
func NewPostgresAccountRepository(db *sql.DB) AccountRepository {
	return &postgresRepository{db: db}
}

// Create inserts a new account; the UNIQUE constraint on email arbitrates races
func (r *postgresRepository) Create(ctx context.Context, name, email, passwordHash string) (*entities.Account, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, password_hash, created_at
	`

	var account entities.Account
	err := r.db.QueryRowContext(ctx, query, name, email, passwordHash).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("ACCOUNT_DUPLICATE_EMAIL").Wrap(ErrDuplicateEmail)
		}
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	return &account, nil
}

// FindByEmail finds an account by its exact email
func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	account, err := r.scanAccount(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(ErrAccountNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FIND_FAILED").
			With("operation", "find account by email").
			Wrap(err)
	}
	return account, nil
}

// FindByID finds an account by ID (UUID). Malformed IDs cannot exist.
// Accepted alternate spellings (braces, urn:uuid:) are queried in canonical form.
func (r *postgresRepository) FindByID(ctx context.Context, id string) (*entities.Account, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id).Wrap(ErrAccountNotFound)
	}

	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	account, err := r.scanAccount(r.db.QueryRowContext(ctx, query, parsed.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id).Wrap(ErrAccountNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FIND_FAILED").
			With("operation", "find account by id").
			With("id", id).
			Wrap(err)
	}
	return account, nil
}

func (r *postgresRepository) scanAccount(row *sql.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}
