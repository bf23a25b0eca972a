package refreshrepofake

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type FakeRefreshTokenRepo struct {
	rows map[string]*refresh.StoredRefreshToken // keyed by row ID
	lock sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		rows: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Create(ctx context.Context, token *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	copied := *token
	tr.rows[token.ID] = &copied
	return nil
}

func (tr *FakeRefreshTokenRepo) GetByJTI(ctx context.Context, jti string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	for _, row := range tr.rows {
		if row.JTI == jti && row.ExpiresAt.After(NowTimeFunc()) {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (tr *FakeRefreshTokenRepo) GetActiveByUserID(ctx context.Context, userID string) ([]*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	var active []*refresh.StoredRefreshToken
	for _, row := range tr.rows {
		if row.UserID == userID && row.ExpiresAt.After(NowTimeFunc()) {
			copied := *row
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (tr *FakeRefreshTokenRepo) Rotate(ctx context.Context, id, currentJTI, newJTI, newHash string, newExpiry time.Time) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	row, ok := tr.rows[id]
	if !ok || row.JTI != currentJTI || !row.ExpiresAt.After(NowTimeFunc()) {
		return apperrors.ErrNotFound
	}
	row.JTI = newJTI
	row.TokenHash = newHash
	row.ExpiresAt = newExpiry
	return nil
}

func (tr *FakeRefreshTokenRepo) RevokeAll(ctx context.Context, userID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	for id, row := range tr.rows {
		if row.UserID == userID {
			delete(tr.rows, id)
		}
	}
	return nil
}

// ActiveCount reports live rows for a user, for test assertions.
func (tr *FakeRefreshTokenRepo) ActiveCount(userID string) int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	count := 0
	for _, row := range tr.rows {
		if row.UserID == userID && row.ExpiresAt.After(NowTimeFunc()) {
			count++
		}
	}
	return count
}
