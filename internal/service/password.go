package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"mindcare-be/internal/metrics"
)

// PasswordCost is the bcrypt work factor for every stored hash
const PasswordCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt. At most `limit`
// hash operations run at once; callers wait for a slot or their context.
type PasswordHasher struct {
	cost    int
	sem     *semaphore.Weighted
	metrics *metrics.Metrics
}

// NewPasswordHasher creates a hasher. limit <= 0 means GOMAXPROCS.
func NewPasswordHasher(limit int, m *metrics.Metrics) *PasswordHasher {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		cost:    PasswordCost,
		sem:     semaphore.NewWeighted(int64(limit)),
		metrics: m,
	}
}

// Hash returns a salted bcrypt hash of password
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	start := time.Now()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	h.metrics.ObservePasswordHash("hash", time.Since(start))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash. A mismatch is (false, nil);
// errors are reserved for malformed hashes and cancellation.
func (h *PasswordHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	h.metrics.ObservePasswordHash("compare", time.Since(start))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// dummyHash is compared against when an email is unknown so that the
// response time matches a wrong-password attempt.
var dummyHash = sync.OnceValue(func() string {
	hashed, err := bcrypt.GenerateFromPassword([]byte("mindcare-dummy-password"), PasswordCost)
	if err != nil {
		panic(err)
	}
	return string(hashed)
})
