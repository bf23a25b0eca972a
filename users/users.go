package users

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user role on the platform
type RoleType string

const (
	RoleTenant RoleType = "tenant" // Regular user looking for a property
	RoleAgent  RoleType = "agent"  // Lists properties, subject to identity verification
	RoleAdmin  RoleType = "admin"  // Platform administration
)

// hashCost is the bcrypt work factor. Fixed so brute-forcing stays
// intentionally slow.
const hashCost = 12

// bcryptMaxBytes is the bcrypt input limit. Longer secrets are truncated
// before hashing so Hash and Check agree on the same prefix.
const bcryptMaxBytes = 72

type User struct {
	ID            string    `json:"id,omitempty"`           // Unique identifier for the user
	Email         string    `json:"email,omitempty"`        // User's email address
	PasswordHash  string    `json:"-"`                      // Hashed version of the user's password - never serialize
	Phone         string    `json:"phone,omitempty"`        // Contact phone number
	Role          RoleType  `json:"role,omitempty"`         // tenant, agent or admin
	BusinessName  string    `json:"business_name,omitempty"`
	Active        bool      `json:"is_active"`              // Inactive users cannot authenticate
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
	LastLogin     time.Time `json:"last_login,omitempty"`
}

func (r RoleType) IsValid() bool {
	switch r {
	case RoleTenant, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// HashPassword hashes a secret with bcrypt at the fixed work factor.
// Secrets longer than the bcrypt byte limit are deterministically truncated.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(truncateSecret(password), hashCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a secret against a stored digest. Digests not in
// bcrypt format fail closed: the function returns false rather than erroring
// into an unverified-but-authenticated state.
func CheckPasswordHash(password, hash string) bool {
	if !strings.HasPrefix(hash, "$2") {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncateSecret(password))
	return err == nil
}

func truncateSecret(secret string) []byte {
	b := []byte(secret)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^(\+234|234|0)[789][01]\d{8}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates a Nigerian phone number (+234, 234 or 0 prefix).
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(strings.ReplaceAll(phone, " ", ""))
}
