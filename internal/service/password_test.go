package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mindcare-be/internal/metrics"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	ctx := context.Background()
	h := NewPasswordHasher(2, metrics.New())

	hashed, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	ok, err := h.Compare(ctx, hashed, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(ctx, hashed, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	ctx := context.Background()
	h := NewPasswordHasher(0, nil)

	first, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(1, nil)

	ok, err := h.Compare(context.Background(), "not-a-bcrypt-hash", "secret1")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_CancelledWhileWaiting(t *testing.T) {
	h := NewPasswordHasher(1, nil)
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret1")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = h.Compare(ctx, dummyHash(), "secret1")
	assert.ErrorIs(t, err, context.Canceled)
}
