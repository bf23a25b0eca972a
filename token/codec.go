package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
)

// TokenType distinguishes access tokens from refresh tokens. A refresh token
// can never be accepted where an access token is expected, and vice versa;
// callers check Claims.TokenType explicitly.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Claims is the verified content of a parsed token.
type Claims struct {
	Subject   string    // User ID
	Email     string    // User email, informational
	Role      string    // Role at issuance time
	TokenType TokenType // access or refresh
	JTI       string    // Unique token ID; always set on refresh tokens
	ExpiresAt time.Time
}

// Codec signs and verifies the compact, expiring tokens carried by clients.
// Tokens are self-contained: validity is purely signature plus expiry, so an
// access token cannot be revoked before it naturally expires. Refresh tokens
// get server-side state through token/refresh.
type Codec struct {
	signer             Signer
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type CodecOption func(*Codec)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) CodecOption {
	return func(c *Codec) {
		c.accessTokenExpiry = accessTokenExpiry
		c.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(signer Signer, options ...CodecOption) *Codec {
	c := &Codec{
		signer: signer,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.accessTokenExpiry == 0 {
		c.accessTokenExpiry = 24 * time.Hour
	}
	if c.refreshTokenExpiry == 0 {
		c.refreshTokenExpiry = 30 * 24 * time.Hour
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c
}

func (c *Codec) AccessTokenExpiry() time.Duration {
	return c.accessTokenExpiry
}

func (c *Codec) RefreshTokenExpiry() time.Duration {
	return c.refreshTokenExpiry
}

// IssueAccessToken creates a signed short-lived access token.
func (c *Codec) IssueAccessToken(userID, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"type":  string(TypeAccess),
		"iat":   c.nowFunc().Unix(),
		"exp":   c.nowFunc().Add(c.accessTokenExpiry).Unix(),
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Codec.IssueAccessToken")
	}
	return signed, nil
}

// IssueRefreshToken creates a signed long-lived refresh token with a fresh
// random jti, returned alongside the token so callers can persist it for
// direct lookup and rotation.
func (c *Codec) IssueRefreshToken(userID, email, role string) (token string, jti string, expiresAt time.Time, err error) {
	jti = uuid.New().String()
	expiresAt = c.nowFunc().Add(c.refreshTokenExpiry)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"type":  string(TypeRefresh),
		"jti":   jti,
		"iat":   c.nowFunc().Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err = c.signer.Sign(claims)
	if err != nil {
		return "", "", time.Time{}, errors.Wrap(err, "Codec.IssueRefreshToken")
	}
	return token, jti, expiresAt, nil
}

// Parse verifies a raw token and extracts its claims. Signature or expiry
// failure maps to ErrInvalidToken so the caller can surface it as a 401.
func (c *Codec) Parse(rawToken string) (*Claims, error) {
	parsed, err := jwt.Parse(rawToken, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(c.nowFunc))
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, apperrors.ErrInvalidToken
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	tokenType, _ := mapClaims["type"].(string)
	jti, _ := mapClaims["jti"].(string)
	exp, _ := mapClaims["exp"].(float64)

	return &Claims{
		Subject:   sub,
		Email:     email,
		Role:      role,
		TokenType: TokenType(tokenType),
		JTI:       jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
