package verification

import (
	"context"
	"time"
)

// AttemptRepo persists the verification attempt log. Attempts are appended,
// then updated in place by the call that created them; nothing deletes them.
type AttemptRepo interface {
	Create(ctx context.Context, attempt *Attempt) error
	Update(ctx context.Context, attempt *Attempt) error
	CountFailedSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]*Attempt, error)
	ListAll(ctx context.Context, userID string) ([]*Attempt, error)
}

// Profile is the durable verification outcome for an agent: hashed identity
// numbers, the state/LGA confirmed by the provider, and the derived
// credibility fields surfaced on the agent's public listing.
type Profile struct {
	UserID           string
	BVNHash          string
	NINHash          string
	VerifiedState    string
	VerifiedLGA      string
	Status           string // pending, verified or failed
	CredibilityScore int
	BadgeVisible     bool
	VerifiedAt       time.Time
}

type ProfileRepo interface {
	Upsert(ctx context.Context, profile *Profile) error
	Get(ctx context.Context, userID string) (*Profile, error)
}
