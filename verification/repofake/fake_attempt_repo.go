package verificationrepofake

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/verification"
)

var _ verification.AttemptRepo = (*FakeAttemptRepo)(nil)

type FakeAttemptRepo struct {
	attempts map[string]*verification.Attempt
	lock     sync.RWMutex
}

func NewFakeAttemptRepo() *FakeAttemptRepo {
	return &FakeAttemptRepo{
		attempts: make(map[string]*verification.Attempt),
	}
}

func (ar *FakeAttemptRepo) Create(ctx context.Context, attempt *verification.Attempt) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	copied := *attempt
	ar.attempts[attempt.ID] = &copied
	return nil
}

func (ar *FakeAttemptRepo) Update(ctx context.Context, attempt *verification.Attempt) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, ok := ar.attempts[attempt.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *attempt
	ar.attempts[attempt.ID] = &copied
	return nil
}

func (ar *FakeAttemptRepo) CountFailedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	count := 0
	for _, attempt := range ar.attempts {
		if attempt.UserID == userID && attempt.Status == verification.StatusFailed && !attempt.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (ar *FakeAttemptRepo) ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]*verification.Attempt, error) {
	all := ar.listSorted(userID)

	var recent []*verification.Attempt
	for _, attempt := range all {
		if attempt.CreatedAt.Before(since) {
			continue
		}
		recent = append(recent, attempt)
		if limit > 0 && len(recent) >= limit {
			break
		}
	}
	return recent, nil
}

func (ar *FakeAttemptRepo) ListAll(ctx context.Context, userID string) ([]*verification.Attempt, error) {
	return ar.listSorted(userID), nil
}

func (ar *FakeAttemptRepo) listSorted(userID string) []*verification.Attempt {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	var list []*verification.Attempt
	for _, attempt := range ar.attempts {
		if attempt.UserID == userID {
			copied := *attempt
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}
