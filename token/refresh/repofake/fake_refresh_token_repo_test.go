package refreshrepofake_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/token/refresh"
	refreshrepofake "github.com/The-entrepreneur/reent/token/refresh/repofake"
)

func TestRotateAdvancesOnlyFromCurrentJTI(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()

	row := &refresh.StoredRefreshToken{
		ID:        "row-1",
		UserID:    "user-1",
		JTI:       "jti-1",
		TokenHash: refresh.HashToken("token-1"),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), row))

	// First rotation wins.
	err := repo.Rotate(context.Background(), "row-1", "jti-1", "jti-2", refresh.HashToken("token-2"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	// A second rotation presenting the stale jti loses, even though the row
	// itself is alive and its expiry was just extended.
	err = repo.Rotate(context.Background(), "row-1", "jti-1", "jti-3", refresh.HashToken("token-3"), time.Now().Add(time.Hour))
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// The winner's jti is the one the row carries now.
	got, err := repo.GetByJTI(context.Background(), "jti-2")
	require.NoError(t, err)
	require.Equal(t, "row-1", got.ID)
	require.True(t, refresh.TokenMatches("token-2", got.TokenHash))

	err = repo.Rotate(context.Background(), "row-1", "jti-2", "jti-3", refresh.HashToken("token-3"), time.Now().Add(time.Hour))
	require.NoError(t, err)
}

func TestRotateUnknownRow(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()

	err := repo.Rotate(context.Background(), "missing", "jti-1", "jti-2", refresh.HashToken("token-2"), time.Now().Add(time.Hour))
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRotateExpiredRow(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()

	row := &refresh.StoredRefreshToken{
		ID:        "row-1",
		UserID:    "user-1",
		JTI:       "jti-1",
		TokenHash: refresh.HashToken("token-1"),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.Create(context.Background(), row))

	err := repo.Rotate(context.Background(), "row-1", "jti-1", "jti-2", refresh.HashToken("token-2"), time.Now().Add(time.Hour))
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
