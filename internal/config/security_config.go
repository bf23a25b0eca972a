package config

import (
	"strconv"
	"time"
)

type SecurityConfig interface {
	GetJWTSecret() string
	GetJWTAlgorithm() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetLoginMaxAttempts() int
	GetLoginWindow() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}

func (Security) GetJWTAlgorithm() string {
	return GetEnv("JWT_ALGORITHM", "HS256")
}

// GetAccessTokenExpiry returns the access token lifetime.
// JWT_EXPIRATION_MINUTES defaults to 1440 (24 hours).
func (Security) GetAccessTokenExpiry() time.Duration {
	minutes, err := strconv.Atoi(GetEnv("JWT_EXPIRATION_MINUTES", "1440"))
	if err != nil || minutes <= 0 {
		minutes = 1440
	}
	return time.Duration(minutes) * time.Minute
}

func (Security) GetRefreshTokenExpiry() time.Duration {
	return 30 * 24 * time.Hour
}

func (Security) GetLoginMaxAttempts() int {
	attempts, err := strconv.Atoi(GetEnv("LOGIN_MAX_ATTEMPTS", "10"))
	if err != nil || attempts <= 0 {
		attempts = 10
	}
	return attempts
}

func (Security) GetLoginWindow() time.Duration {
	return 15 * time.Minute
}
