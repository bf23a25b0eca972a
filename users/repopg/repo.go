package userrepopg

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/The-entrepreneur/reent/internal/database"
	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/users"
)

var _ users.Repo = (*Repo)(nil)

type Repo struct {
	db *database.Database
}

func New(db *database.Database) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, user *users.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, phone, role, business_name, is_active, email_verified, phone_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Phone,
		string(user.Role),
		user.BusinessName,
		user.Active,
		user.EmailVerified,
		user.PhoneVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "userrepopg.Create")
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (*users.User, error) {
	query := `
		SELECT id, email, password_hash, phone, role, business_name, is_active,
		       email_verified, phone_verified, created_at, updated_at, COALESCE(last_login, 'epoch'::timestamptz)
		FROM users ` + where

	var user users.User
	var role string
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&role,
		&user.BusinessName,
		&user.Active,
		&user.EmailVerified,
		&user.PhoneVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLogin,
	)
	if err == database.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "userrepopg.getOne")
	}
	user.Role = users.RoleType(role)
	return &user, nil
}

func (r *Repo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1, updated_at = NOW() WHERE id = $2`, at, id)
	if err != nil {
		return errors.Wrap(err, "userrepopg.SetLastLogin")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return errors.Wrap(err, "userrepopg.SetActive")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
