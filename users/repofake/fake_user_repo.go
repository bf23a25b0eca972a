package userrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	byID    map[string]*users.User
	byEmail map[string]string // email to user ID
	lock    sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byID:    make(map[string]*users.User),
		byEmail: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(ctx context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.byEmail[user.Email]; ok {
		return errors.ErrEmailTaken
	}
	copied := *user
	ur.byID[user.ID] = &copied
	ur.byEmail[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.byEmail[email]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	copied := *ur.byID[id]
	return &copied, nil
}

func (ur *FakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.byID[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (ur *FakeUserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.byID[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	user.LastLogin = at
	return nil
}

func (ur *FakeUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.byID[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	user.Active = active
	return nil
}

// Delete removes a user entirely, simulating account deletion in tests.
func (ur *FakeUserRepo) Delete(id string) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.byID[id]
	if !ok {
		return
	}
	delete(ur.byEmail, user.Email)
	delete(ur.byID, id)
}
