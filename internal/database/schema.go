package database

import (
	"context"

	"github.com/pkg/errors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		phone VARCHAR(20),
		role VARCHAR(20) NOT NULL CHECK (role IN ('tenant', 'agent', 'admin')),
		business_name VARCHAR(255),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		jti VARCHAR(36) UNIQUE,
		token_hash VARCHAR(255) NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON refresh_tokens (expires_at)`,
	`CREATE TABLE IF NOT EXISTS verification_attempts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		attempt_type VARCHAR(20) NOT NULL CHECK (attempt_type IN ('bvn', 'nin')),
		status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'success', 'failed')),
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 1,
		last_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verification_attempts_user_created ON verification_attempts (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS agent_verifications (
		user_id UUID PRIMARY KEY,
		bvn_hash VARCHAR(255) NOT NULL,
		nin_hash VARCHAR(255) NOT NULL,
		verified_state VARCHAR(100),
		verified_lga VARCHAR(100),
		status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'verified', 'failed')),
		credibility_score INTEGER NOT NULL DEFAULT 0,
		badge_visible BOOLEAN NOT NULL DEFAULT FALSE,
		verified_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables the service depends on when they do not
// exist yet. Statements are idempotent so repeated startups are safe.
func (db *Database) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "database.EnsureSchema")
		}
	}
	return nil
}
