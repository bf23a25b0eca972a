package refreshrepopg

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/The-entrepreneur/reent/internal/database"
	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/token/refresh"
)

var _ refresh.Repo = (*Repo)(nil)

type Repo struct {
	db *database.Database
}

func New(db *database.Database) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, token *refresh.StoredRefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, jti, token_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		token.ID,
		token.UserID,
		token.JTI,
		token.TokenHash,
		token.ExpiresAt,
	).Scan(&token.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "refreshrepopg.Create")
	}
	return nil
}

func (r *Repo) GetByJTI(ctx context.Context, jti string) (*refresh.StoredRefreshToken, error) {
	query := `
		SELECT id, user_id, jti, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE jti = $1 AND expires_at > NOW()
	`
	return r.scanOne(r.db.QueryRow(ctx, query, jti))
}

func (r *Repo) GetActiveByUserID(ctx context.Context, userID string) ([]*refresh.StoredRefreshToken, error) {
	query := `
		SELECT id, user_id, jti, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "refreshrepopg.GetActiveByUserID")
	}
	defer rows.Close()

	var tokens []*refresh.StoredRefreshToken
	for rows.Next() {
		var t refresh.StoredRefreshToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.JTI, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "refreshrepopg.GetActiveByUserID scan")
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

// Rotate replaces the row's jti, hash and expiry in place inside a
// transaction with a row lock. The predicate requires the row to still carry
// currentJTI: two refresh calls racing on the same row serialize on the
// lock, and the loser's re-evaluated predicate no longer matches the
// winner's advanced jti.
func (r *Repo) Rotate(ctx context.Context, id, currentJTI, newJTI, newHash string, newExpiry time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshrepopg.Rotate begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM refresh_tokens
		WHERE id = $1 AND COALESCE(jti, '') = $2 AND expires_at > NOW()
		FOR UPDATE
	`, id, currentJTI).Scan(&lockedID)
	if err == database.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "refreshrepopg.Rotate lock")
	}

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET jti = $1, token_hash = $2, expires_at = $3
		WHERE id = $4
	`, newJTI, newHash, newExpiry, lockedID)
	if err != nil {
		return errors.Wrap(err, "refreshrepopg.Rotate update")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *Repo) RevokeAll(ctx context.Context, userID string) error {
	// Deleting zero rows is not an error: revocation is idempotent.
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Wrap(err, "refreshrepopg.RevokeAll")
	}
	return nil
}

func (r *Repo) scanOne(row interface{ Scan(dest ...any) error }) (*refresh.StoredRefreshToken, error) {
	var t refresh.StoredRefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.JTI, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err == database.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "refreshrepopg.scanOne")
	}
	return &t, nil
}
