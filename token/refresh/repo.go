package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side row backing an issued refresh token.
// The client holds the signed token; only its digest (HashToken) is
// persisted, keyed by the token's jti claim. There is at most one live row
// per jti: rotation updates the jti, digest and expiry of the existing row
// in place, which invalidates the pre-rotation token without changing row
// identity.
type StoredRefreshToken struct {
	ID        string    // Row identifier
	UserID    string    // Owning user
	JTI       string    // jti claim of the live token; primary lookup key
	TokenHash string    // HashToken digest of the raw token string
	ExpiresAt time.Time // Row is dead once this passes
	CreatedAt time.Time
}

// Repo manages server-side refresh token rows.
//
// GetByJTI and GetActiveByUserID only return rows with expires_at in the
// future. Rotate advances a row only while it still carries currentJTI and
// must report ErrNotFound otherwise, so two refresh calls racing on one
// token resolve to exactly one winner: the loser finds the row already
// carrying the winner's jti.
type Repo interface {
	Create(ctx context.Context, token *StoredRefreshToken) error
	GetByJTI(ctx context.Context, jti string) (*StoredRefreshToken, error)
	GetActiveByUserID(ctx context.Context, userID string) ([]*StoredRefreshToken, error)
	Rotate(ctx context.Context, id, currentJTI, newJTI, newHash string, newExpiry time.Time) error
	RevokeAll(ctx context.Context, userID string) error
}
