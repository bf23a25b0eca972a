package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type AttemptType string

const (
	AttemptBVN AttemptType = "bvn"
	AttemptNIN AttemptType = "nin"
)

type AttemptStatus string

const (
	StatusPending AttemptStatus = "pending"
	StatusSuccess AttemptStatus = "success"
	StatusFailed  AttemptStatus = "failed"
)

const (
	// lockThreshold failed attempts within lockWindow lock a user out of
	// verification. The lock is never stored: it is re-derived from the
	// attempt log on every check, so it expires implicitly as attempts age
	// out of the window.
	lockThreshold = 3
	lockWindow    = 24 * time.Hour
)

// Attempt is one row of the verification attempt log. Rows are created
// pending when a call starts and updated in place with the outcome; they are
// never deleted.
type Attempt struct {
	ID            string        `json:"id"`
	UserID        string        `json:"-"`
	Type          AttemptType   `json:"attempt_type"`
	Status        AttemptStatus `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	AttemptCount  int           `json:"attempt_count"`
	LastAttemptAt time.Time     `json:"last_attempt_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Tracker records verification attempts and derives lockout state from the
// recent failure history.
type Tracker struct {
	repo    AttemptRepo
	nowFunc func() time.Time
}

type TrackerOption func(*Tracker)

func WithTrackerNowFunc(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.nowFunc = now
	}
}

func NewTracker(repo AttemptRepo, options ...TrackerOption) *Tracker {
	t := &Tracker{
		repo:    repo,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// RecordAttempt appends a pending attempt for the user.
func (t *Tracker) RecordAttempt(ctx context.Context, userID string, attemptType AttemptType) (*Attempt, error) {
	attempt := &Attempt{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          attemptType,
		Status:        StatusPending,
		AttemptCount:  1,
		LastAttemptAt: t.nowFunc(),
		CreatedAt:     t.nowFunc(),
	}
	if err := t.repo.Create(ctx, attempt); err != nil {
		return nil, errors.Wrap(err, "Tracker.RecordAttempt")
	}
	return attempt, nil
}

// UpdateOutcome settles an attempt in place with its final status, the
// human-readable failure reason when failed, and how many provider calls the
// attempt consumed.
func (t *Tracker) UpdateOutcome(ctx context.Context, attempt *Attempt, status AttemptStatus, errorMessage string, attemptCount int) error {
	attempt.Status = status
	attempt.ErrorMessage = errorMessage
	if attemptCount > 0 {
		attempt.AttemptCount = attemptCount
	}
	attempt.LastAttemptAt = t.nowFunc()
	if err := t.repo.Update(ctx, attempt); err != nil {
		return errors.Wrap(err, "Tracker.UpdateOutcome")
	}
	return nil
}

// IsLocked reports whether the user has accumulated enough recent failures
// to be locked out. Evaluated fresh against the attempt log on every call.
func (t *Tracker) IsLocked(ctx context.Context, userID string) (bool, error) {
	failed, err := t.repo.CountFailedSince(ctx, userID, t.nowFunc().Add(-lockWindow))
	if err != nil {
		return false, errors.Wrap(err, "Tracker.IsLocked")
	}
	return failed >= lockThreshold, nil
}

// RecentAttempts returns the user's attempts within the window, newest first.
func (t *Tracker) RecentAttempts(ctx context.Context, userID string, window time.Duration, limit int) ([]*Attempt, error) {
	attempts, err := t.repo.ListRecent(ctx, userID, t.nowFunc().Add(-window), limit)
	if err != nil {
		return nil, errors.Wrap(err, "Tracker.RecentAttempts")
	}
	return attempts, nil
}

// AllAttempts returns the user's full attempt history, newest first.
func (t *Tracker) AllAttempts(ctx context.Context, userID string) ([]*Attempt, error) {
	attempts, err := t.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "Tracker.AllAttempts")
	}
	return attempts, nil
}
