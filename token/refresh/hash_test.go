package refresh_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/The-entrepreneur/reent/token"
	"github.com/The-entrepreneur/reent/token/refresh"
)

func TestHashTokenIsDeterministic(t *testing.T) {
	require.Equal(t, refresh.HashToken("some-token"), refresh.HashToken("some-token"))
	require.NotEqual(t, refresh.HashToken("some-token"), refresh.HashToken("other-token"))
}

func TestHashTokenCoversWholeToken(t *testing.T) {
	// Signed tokens for one user differ only deep into the string; the
	// stored digest must still tell them apart.
	prefix := strings.Repeat("a", 100)
	first := prefix + ".first-signature"
	second := prefix + ".second-signature"

	require.NotEqual(t, refresh.HashToken(first), refresh.HashToken(second))
	require.True(t, refresh.TokenMatches(first, refresh.HashToken(first)))
	require.False(t, refresh.TokenMatches(first, refresh.HashToken(second)))
	require.False(t, refresh.TokenMatches(second, refresh.HashToken(first)))
}

func TestHashTokenDistinguishesIssuedRefreshTokens(t *testing.T) {
	codec := token.NewCodec(token.NewHMACSigner("test-signing-secret"))

	first, _, _, err := codec.IssueRefreshToken("user-1", "agent@example.com", "agent")
	require.NoError(t, err)
	second, _, _, err := codec.IssueRefreshToken("user-1", "agent@example.com", "agent")
	require.NoError(t, err)

	// Same subject, same claims apart from jti: the raw tokens share a long
	// prefix but must never verify against each other's stored digest.
	require.False(t, refresh.TokenMatches(first, refresh.HashToken(second)))
	require.False(t, refresh.TokenMatches(second, refresh.HashToken(first)))
}
