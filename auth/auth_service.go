package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/token"
	"github.com/The-entrepreneur/reent/token/refresh"
	"github.com/The-entrepreneur/reent/users"
)

// TokenPair is the issuance payload returned by Login and Refresh.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresInMinutes int    `json:"expires_in"`
}

// RegisterParams carries the fields needed to create an account.
type RegisterParams struct {
	Email        string
	Password     string
	Phone        string
	Role         users.RoleType
	BusinessName string
}

// ValidationError marks a failure caused by the caller's input, as opposed
// to an infrastructure failure. The message is safe to return to the client.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users         users.Repo
	RefreshTokens refresh.Repo
}

// Service orchestrates login, refresh and logout. A user moves between two
// states: anonymous and authenticated, where authenticated means holding a
// token pair whose refresh half is backed by exactly one live row, advanced
// in place on every rotation.
//
// Access tokens are validated purely cryptographically and cannot be revoked
// before expiry; logout only revokes refresh tokens. This is a documented
// limitation of the stateless access token design.
type Service struct {
	repos   Repos
	codec   *token.Codec
	limiter LoginLimiter // optional; nil disables login throttling
	logger  zerolog.Logger
	nowTime func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithLoginLimiter enables throttling of login attempts per identity and IP.
func WithLoginLimiter(limiter LoginLimiter) ServiceOption {
	return func(s *Service) {
		s.limiter = limiter
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService initializes the session manager with required dependencies.
func NewService(repos Repos, codec *token.Codec, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[NewService] RefreshTokens repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] codec is required")
	}

	s := &Service{
		repos:   repos,
		codec:   codec,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*users.User, error) {
	if !users.ValidateEmail(params.Email) {
		return nil, &ValidationError{msg: "invalid email address"}
	}
	if err := users.ValidatePasswordStrength(params.Password); err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}
	if params.Phone != "" && !users.ValidatePhone(params.Phone) {
		return nil, &ValidationError{msg: "invalid phone number"}
	}
	if !params.Role.IsValid() {
		return nil, &ValidationError{msg: "invalid role"}
	}

	if _, err := s.repos.Users.GetByEmail(ctx, params.Email); err == nil {
		return nil, apperrors.ErrEmailTaken
	}

	passwordHash, err := users.HashPassword(params.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] HashPassword")
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Email:        params.Email,
		PasswordHash: passwordHash,
		Phone:        params.Phone,
		Role:         params.Role,
		BusinessName: params.BusinessName,
		Active:       true,
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] Create")
	}
	return user, nil
}

// Login checks the credentials and issues an access/refresh token pair.
// Missing user, wrong password and inactive account all surface the same
// generic error, so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password, clientIP string) (*TokenPair, error) {
	if s.limiter != nil {
		if err := s.limiter.Enforce(ctx, email, clientIP); err != nil {
			if errors.Is(err, apperrors.ErrTooManyLogins) {
				return nil, err
			}
			// Throttle backend unavailable: fail open, logins still work.
			s.logger.Warn().Err(err).Msg("login limiter unavailable")
		}
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.repos.Users.SetLastLogin(ctx, user.ID, s.nowTime()); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] SetLastLogin")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] issueTokenPair")
	}
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair, rotating the
// stored row in place so the presented token cannot be replayed. Expected
// failures surface as 401-class sentinels; anything unexpected is downgraded
// to a generic internal error with no detail leaked.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	pair, err := s.refresh(ctx, rawRefreshToken)
	if err == nil {
		return pair, nil
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrInvalidTokenType),
		errors.Is(err, apperrors.ErrInvalidOrExpiredToken),
		errors.Is(err, apperrors.ErrUnauthorized):
		return nil, err
	default:
		s.logger.Error().Err(err).Msg("token refresh failed")
		return nil, apperrors.ErrInternal
	}
}

func (s *Service) refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Parse(rawRefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, apperrors.ErrInvalidTokenType
	}

	row, err := s.locateRefreshRow(ctx, claims, rawRefreshToken)
	if err != nil {
		return nil, err
	}

	// Re-check the subject is still present and active.
	user, err := s.repos.Users.GetByID(ctx, row.UserID)
	if err != nil || !user.Active {
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, err := s.codec.IssueAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.refresh] IssueAccessToken")
	}
	newRefreshToken, newJTI, newExpiry, err := s.codec.IssueRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.refresh] IssueRefreshToken")
	}
	newHash := refresh.HashToken(newRefreshToken)

	// In-place rotation: the row keeps its identity, the presented token dies.
	// Rotation is guarded by the row's current jti, so a concurrent refresh
	// that already advanced the row makes this miss, and the loser gets the
	// same answer as a replayed token.
	if err := s.repos.RefreshTokens.Rotate(ctx, row.ID, row.JTI, newJTI, newHash, newExpiry); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, errors.Wrap(err, "[Service.refresh] Rotate")
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     newRefreshToken,
		TokenType:        "bearer",
		ExpiresInMinutes: int(s.codec.AccessTokenExpiry().Minutes()),
	}, nil
}

// locateRefreshRow finds the stored row backing a presented refresh token.
// The jti claim is the primary O(1) path. Tokens issued before the jti scheme
// carry no jti, so a scan of the subject's active rows comparing the token's
// digest against each stored digest remains as a compatibility fallback.
func (s *Service) locateRefreshRow(ctx context.Context, claims *token.Claims, rawToken string) (*refresh.StoredRefreshToken, error) {
	if claims.JTI != "" {
		row, err := s.repos.RefreshTokens.GetByJTI(ctx, claims.JTI)
		if err == nil && refresh.TokenMatches(rawToken, row.TokenHash) {
			return row, nil
		}
	}

	rows, err := s.repos.RefreshTokens.GetActiveByUserID(ctx, claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.locateRefreshRow] GetActiveByUserID")
	}
	for _, row := range rows {
		if refresh.TokenMatches(rawToken, row.TokenHash) {
			return row, nil
		}
	}
	return nil, apperrors.ErrInvalidOrExpiredToken
}

// Logout resolves the subject from an access token and revokes every refresh
// row they own. Revocation is global rather than per device, and calling it
// again is a no-op rather than an error.
func (s *Service) Logout(ctx context.Context, rawAccessToken string) error {
	claims, err := s.codec.Parse(rawAccessToken)
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	if claims.TokenType != token.TypeAccess {
		return apperrors.ErrInvalidTokenType
	}

	if err := s.repos.RefreshTokens.RevokeAll(ctx, claims.Subject); err != nil {
		s.logger.Error().Err(err).Msg("logout failed")
		return apperrors.ErrInternal
	}
	return nil
}

// CurrentUser resolves and loads the subject of an access token.
func (s *Service) CurrentUser(ctx context.Context, rawAccessToken string) (*users.User, error) {
	claims, err := s.codec.Parse(rawAccessToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.TokenType != token.TypeAccess {
		return nil, apperrors.ErrInvalidTokenType
	}

	user, err := s.repos.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	if !user.Active {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *users.User) (*TokenPair, error) {
	accessToken, err := s.codec.IssueAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "IssueAccessToken")
	}

	refreshToken, jti, expiresAt, err := s.codec.IssueRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "IssueRefreshToken")
	}

	if err := s.repos.RefreshTokens.Create(ctx, &refresh.StoredRefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: refresh.HashToken(refreshToken),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, errors.Wrap(err, "RefreshTokens.Create")
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "bearer",
		ExpiresInMinutes: int(s.codec.AccessTokenExpiry().Minutes()),
	}, nil
}
