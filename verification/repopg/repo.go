package verificationrepopg

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/The-entrepreneur/reent/internal/database"
	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/verification"
)

var (
	_ verification.AttemptRepo = (*AttemptRepo)(nil)
	_ verification.ProfileRepo = (*ProfileRepo)(nil)
)

type AttemptRepo struct {
	db *database.Database
}

func NewAttemptRepo(db *database.Database) *AttemptRepo {
	return &AttemptRepo{db: db}
}

func (r *AttemptRepo) Create(ctx context.Context, attempt *verification.Attempt) error {
	query := `
		INSERT INTO verification_attempts (id, user_id, attempt_type, status, error_message, attempt_count, last_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		string(attempt.Type),
		string(attempt.Status),
		attempt.ErrorMessage,
		attempt.AttemptCount,
		attempt.LastAttemptAt,
		attempt.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "verificationrepopg.Create")
	}
	return nil
}

func (r *AttemptRepo) Update(ctx context.Context, attempt *verification.Attempt) error {
	query := `
		UPDATE verification_attempts
		SET status = $1, error_message = $2, attempt_count = $3, last_attempt_at = $4
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query,
		string(attempt.Status),
		attempt.ErrorMessage,
		attempt.AttemptCount,
		attempt.LastAttemptAt,
		attempt.ID,
	)
	if err != nil {
		return errors.Wrap(err, "verificationrepopg.Update")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountFailedSince is the lockout predicate: failures for the user with
// created_at inside the trailing window, counted fresh on every call.
func (r *AttemptRepo) CountFailedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM verification_attempts
		WHERE user_id = $1 AND status = 'failed' AND created_at >= $2
	`, userID, since).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "verificationrepopg.CountFailedSince")
	}
	return count, nil
}

func (r *AttemptRepo) ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]*verification.Attempt, error) {
	query := `
		SELECT id, user_id, attempt_type, status, COALESCE(error_message, ''), attempt_count, last_attempt_at, created_at
		FROM verification_attempts
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	return r.list(ctx, query, userID, since, limit)
}

func (r *AttemptRepo) ListAll(ctx context.Context, userID string) ([]*verification.Attempt, error) {
	query := `
		SELECT id, user_id, attempt_type, status, COALESCE(error_message, ''), attempt_count, last_attempt_at, created_at
		FROM verification_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *AttemptRepo) list(ctx context.Context, query string, args ...any) ([]*verification.Attempt, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "verificationrepopg.list")
	}
	defer rows.Close()

	var attempts []*verification.Attempt
	for rows.Next() {
		var a verification.Attempt
		var attemptType, status string
		if err := rows.Scan(&a.ID, &a.UserID, &attemptType, &status, &a.ErrorMessage, &a.AttemptCount, &a.LastAttemptAt, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "verificationrepopg.list scan")
		}
		a.Type = verification.AttemptType(attemptType)
		a.Status = verification.AttemptStatus(status)
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

type ProfileRepo struct {
	db *database.Database
}

func NewProfileRepo(db *database.Database) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Upsert(ctx context.Context, profile *verification.Profile) error {
	query := `
		INSERT INTO agent_verifications (user_id, bvn_hash, nin_hash, verified_state, verified_lga, status, credibility_score, badge_visible, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE
		SET bvn_hash = EXCLUDED.bvn_hash,
		    nin_hash = EXCLUDED.nin_hash,
		    verified_state = EXCLUDED.verified_state,
		    verified_lga = EXCLUDED.verified_lga,
		    status = EXCLUDED.status,
		    credibility_score = EXCLUDED.credibility_score,
		    badge_visible = EXCLUDED.badge_visible,
		    verified_at = EXCLUDED.verified_at
	`
	_, err := r.db.Exec(ctx, query,
		profile.UserID,
		profile.BVNHash,
		profile.NINHash,
		profile.VerifiedState,
		profile.VerifiedLGA,
		profile.Status,
		profile.CredibilityScore,
		profile.BadgeVisible,
		profile.VerifiedAt,
	)
	if err != nil {
		return errors.Wrap(err, "verificationrepopg.Upsert")
	}
	return nil
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*verification.Profile, error) {
	query := `
		SELECT user_id, bvn_hash, nin_hash, COALESCE(verified_state, ''), COALESCE(verified_lga, ''),
		       status, credibility_score, badge_visible, COALESCE(verified_at, 'epoch'::timestamptz)
		FROM agent_verifications
		WHERE user_id = $1
	`
	var p verification.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.BVNHash,
		&p.NINHash,
		&p.VerifiedState,
		&p.VerifiedLGA,
		&p.Status,
		&p.CredibilityScore,
		&p.BadgeVisible,
		&p.VerifiedAt,
	)
	if err == database.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "verificationrepopg.Get")
	}
	return &p, nil
}
