package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"mindcare-be/internal/cache"
	"mindcare-be/internal/jwt"
	"mindcare-be/internal/logging"
	"mindcare-be/internal/metrics"
	"mindcare-be/internal/models"
	"mindcare-be/internal/repository"
)

// ProfileCacheTTL is how long a public profile stays in the cache
const ProfileCacheTTL = 10 * time.Minute

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	Authenticate(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Identify(ctx context.Context, token string) (*models.UserView, error)
}

type authService struct {
	accountRepo repository.AccountRepository
	jwtService  *jwt.JWTService
	hasher      *PasswordHasher
	cache       cache.Cache // Optional, nil disables profile caching
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewAuthService creates a new auth service. profileCache and m may be nil.
func NewAuthService(
	accountRepo repository.AccountRepository,
	jwtService *jwt.JWTService,
	hasher *PasswordHasher,
	profileCache cache.Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		hasher:      hasher,
		cache:       profileCache,
		metrics:     m,
		logger:      logger,
	}
}

// Register creates a new account and signs it in
func (s *authService) Register(ctx context.Context, req *models.SignupRequest) (resp *models.AuthResponse, err error) {
	defer func() { s.record("register", err) }()

	if req == nil || req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").With("operation", "register").Wrap(ErrInvalidInput)
	}

	// Check if account already exists
	_, err = s.accountRepo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, oops.Code("AUTH_EMAIL_TAKEN").With("email", req.Email).Wrap(ErrEmailTaken)
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, s.internal("find account by email", err)
	}

	hashed, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, s.internal("hash password", err)
	}

	account, err := s.accountRepo.Create(ctx, req.Name, req.Email, hashed)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent signup for the same email
		return nil, oops.Code("AUTH_EMAIL_TAKEN").With("email", req.Email).Wrap(ErrEmailTaken)
	}
	if err != nil {
		return nil, s.internal("create account", err)
	}

	token, err := s.jwtService.GenerateToken(account.ID, account.Email)
	if err != nil {
		return nil, s.internal("generate token", err)
	}

	view := models.NewUserView(account)
	s.cacheProfile(ctx, view)
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID)

	return &models.AuthResponse{Status: models.StatusOK, User: view, Token: token}, nil
}

// Authenticate verifies credentials and issues a fresh token
func (s *authService) Authenticate(ctx context.Context, req *models.LoginRequest) (resp *models.AuthResponse, err error) {
	defer func() { s.record("login", err) }()

	if req == nil || req.Email == "" || req.Password == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").With("operation", "login").Wrap(ErrInvalidInput)
	}

	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, s.internal("find account by email", err)
	}

	hash := dummyHash()
	if account != nil {
		hash = account.PasswordHash
	}
	match, cmpErr := s.hasher.Compare(ctx, hash, req.Password)
	if cmpErr != nil {
		return nil, s.internal("compare password", cmpErr)
	}
	if account == nil || !match {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token, err := s.jwtService.GenerateToken(account.ID, account.Email)
	if err != nil {
		return nil, s.internal("generate token", err)
	}

	view := models.NewUserView(account)
	s.cacheProfile(ctx, view)

	return &models.AuthResponse{Status: models.StatusOK, User: view, Token: token}, nil
}

// Identify resolves a session token to the public profile of its account
func (s *authService) Identify(ctx context.Context, token string) (view *models.UserView, err error) {
	defer func() { s.record("me", err) }()

	if token == "" {
		return nil, oops.Code("AUTH_MISSING_TOKEN").Wrap(ErrMissingToken)
	}

	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_TOKEN").Wrapf(ErrInvalidToken, "%v", err)
	}

	// The store is authoritative; the cache only mirrors what it returns
	account, err := s.accountRepo.FindByID(ctx, claims.AccountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		s.evictProfile(ctx, claims.AccountID)
		return nil, oops.Code("AUTH_ACCOUNT_NOT_FOUND").With("account_id", claims.AccountID).Wrap(ErrAccountNotFound)
	}
	if err != nil {
		return nil, s.internal("find account by id", err)
	}

	view = models.NewUserView(account)
	if cached, ok := s.cachedProfile(ctx, view.ID); !ok || *cached != *view {
		s.cacheProfile(ctx, view)
	}
	return view, nil
}

func (s *authService) internal(step string, err error) error {
	return oops.Code("AUTH_INTERNAL").With("step", step).Wrap(fmt.Errorf("%w: %s: %w", ErrInternal, step, err))
}

func (s *authService) record(operation string, err error) {
	switch {
	case err == nil:
		s.metrics.RecordOperation(operation, metrics.OutcomeSuccess)
	case errors.Is(err, ErrInternal):
		s.metrics.RecordOperation(operation, metrics.OutcomeError)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
		s.metrics.RecordOperation(operation, metrics.OutcomeDenied)
	default:
		s.metrics.RecordOperation(operation, metrics.OutcomeClientError)
	}
}

func profileKey(accountID string) string {
	return "account:" + accountID
}

func (s *authService) cacheProfile(ctx context.Context, view *models.UserView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, profileKey(view.ID), view, ProfileCacheTTL); err != nil {
		logging.LogError(s.logger, "failed to cache profile", err, "account_id", view.ID)
	}
}

func (s *authService) cachedProfile(ctx context.Context, accountID string) (*models.UserView, bool) {
	if s.cache == nil {
		return nil, false
	}
	var view models.UserView
	err := s.cache.GetJSON(ctx, profileKey(accountID), &view)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logging.LogError(s.logger, "failed to read cached profile", err, "account_id", accountID)
		}
		return nil, false
	}
	return &view, true
}

func (s *authService) evictProfile(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileKey(accountID)); err != nil {
		logging.LogError(s.logger, "failed to evict cached profile", err, "account_id", accountID)
	}
}
