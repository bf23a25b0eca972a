package verificationrepofake

import (
	"context"
	"sync"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/verification"
)

var _ verification.ProfileRepo = (*FakeProfileRepo)(nil)

type FakeProfileRepo struct {
	profiles map[string]*verification.Profile
	lock     sync.RWMutex
}

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{
		profiles: make(map[string]*verification.Profile),
	}
}

func (pr *FakeProfileRepo) Upsert(ctx context.Context, profile *verification.Profile) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	copied := *profile
	pr.profiles[profile.UserID] = &copied
	return nil
}

func (pr *FakeProfileRepo) Get(ctx context.Context, userID string) (*verification.Profile, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	profile, ok := pr.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}
