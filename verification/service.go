package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/users"
)

const (
	recentAttemptsWindow = 7 * 24 * time.Hour
	recentAttemptsLimit  = 10

	// Credibility score granted after a full BVN+NIN verification.
	initialCredibilityScore = 50

	// BVN matches are gated on the phone number alone. The provider's name
	// similarity signal is advisory and never withholds verification.
	advisoryNameMatchScore = 100
	nameMatchThreshold     = 90
)

// InitiateParams is the request body of a verification run.
type InitiateParams struct {
	BVN   string
	Phone string
	NIN   string
	DOB   string // YYYY-MM-DD
}

// InitiateResponse reports how far a verification run got.
type InitiateResponse struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	BVNVerified   bool           `json:"bvn_verified"`
	NINVerified   bool           `json:"nin_verified"`
	OverallStatus string         `json:"overall_status"` // pending, verified, failed or locked
	Details       map[string]any `json:"details"`
}

// StatusResponse is the agent's current verification standing.
type StatusResponse struct {
	VerificationStatus string     `json:"verification_status"`
	CredibilityScore   int        `json:"credibility_score"`
	BadgeVisible       bool       `json:"verification_badge_visible"`
	RecentAttempts     []*Attempt `json:"recent_attempts"`
	IsLocked           bool       `json:"is_locked"`
}

// HistoryResponse is the agent's full attempt history.
type HistoryResponse struct {
	UserID        string     `json:"agent_id"`
	TotalAttempts int        `json:"total_attempts"`
	Attempts      []*Attempt `json:"attempts"`
}

// Service runs the identity-verification workflow: it gates each run behind
// the failure lockout, records one attempt per provider call, applies the
// matching rules and persists the durable outcome.
type Service struct {
	tracker  *Tracker
	provider Provider
	profiles ProfileRepo
	logger   zerolog.Logger
}

type ServiceOption func(*Service)

func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(tracker *Tracker, provider Provider, profiles ProfileRepo, options ...ServiceOption) (*Service, error) {
	if tracker == nil {
		return nil, errors.New("[verification.NewService] tracker is required")
	}
	if provider == nil {
		return nil, errors.New("[verification.NewService] provider is required")
	}
	if profiles == nil {
		return nil, errors.New("[verification.NewService] profiles repo is required")
	}

	s := &Service{
		tracker:  tracker,
		provider: provider,
		profiles: profiles,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Initiate runs BVN then NIN verification for an agent. The lockout check
// happens before any external call, and a BVN failure short-circuits before
// NIN is attempted. Both checks produce independent attempt records.
func (s *Service) Initiate(ctx context.Context, user *users.User, params InitiateParams) (*InitiateResponse, error) {
	if user.Role != users.RoleAgent {
		return nil, apperrors.ErrForbidden
	}

	locked, err := s.tracker.IsLocked(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Initiate] IsLocked")
	}
	if locked {
		return nil, apperrors.ErrVerificationLocked
	}

	bvnResult := s.verifyBVN(ctx, user.ID, params.BVN, params.Phone)
	if !bvnResult.verified {
		return &InitiateResponse{
			Success:       false,
			Message:       "BVN verification failed",
			BVNVerified:   false,
			NINVerified:   false,
			OverallStatus: "failed",
			Details: map[string]any{
				"bvn_error":        bvnResult.failureReason(),
				"phone_match":      bvnResult.phoneMatch,
				"name_match_score": bvnResult.nameMatchScore,
			},
		}, nil
	}

	ninResult := s.verifyNIN(ctx, user.ID, params.NIN, params.DOB)
	if !ninResult.verified {
		return &InitiateResponse{
			Success:       false,
			Message:       "NIN verification failed",
			BVNVerified:   true,
			NINVerified:   false,
			OverallStatus: "failed",
			Details: map[string]any{
				"nin_error": ninResult.failureReason(),
				"dob_match": ninResult.dobMatch,
			},
		}, nil
	}

	// Both checks passed: persist the durable outcome. Only bcrypt digests
	// of the identity numbers are stored.
	bvnHash, err := users.HashPassword(params.BVN)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Initiate] hash bvn")
	}
	ninHash, err := users.HashPassword(params.NIN)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Initiate] hash nin")
	}

	if err := s.profiles.Upsert(ctx, &Profile{
		UserID:           user.ID,
		BVNHash:          bvnHash,
		NINHash:          ninHash,
		VerifiedState:    ninResult.state,
		VerifiedLGA:      ninResult.lga,
		Status:           "verified",
		CredibilityScore: initialCredibilityScore,
		BadgeVisible:     true,
		VerifiedAt:       time.Now(),
	}); err != nil {
		return nil, errors.Wrap(err, "[Service.Initiate] profiles.Upsert")
	}

	return &InitiateResponse{
		Success:       true,
		Message:       "Verification completed successfully",
		BVNVerified:   true,
		NINVerified:   true,
		OverallStatus: "verified",
		Details: map[string]any{
			"verified_state":             ninResult.state,
			"verified_lga":               ninResult.lga,
			"bvn_full_name":              bvnResult.fullName,
			"nin_full_name":              ninResult.fullName,
			"credibility_score":          initialCredibilityScore,
			"verification_badge_visible": true,
		},
	}, nil
}

// Status reports the agent's verification standing along with recent
// attempts and the freshly derived lock state.
func (s *Service) Status(ctx context.Context, user *users.User) (*StatusResponse, error) {
	if user.Role != users.RoleAgent {
		return nil, apperrors.ErrForbidden
	}

	recent, err := s.tracker.RecentAttempts(ctx, user.ID, recentAttemptsWindow, recentAttemptsLimit)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Status] RecentAttempts")
	}

	locked, err := s.tracker.IsLocked(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Status] IsLocked")
	}

	resp := &StatusResponse{
		VerificationStatus: "pending",
		RecentAttempts:     recent,
		IsLocked:           locked,
	}

	profile, err := s.profiles.Get(ctx, user.ID)
	if err == nil {
		resp.VerificationStatus = profile.Status
		resp.CredibilityScore = profile.CredibilityScore
		resp.BadgeVisible = profile.BadgeVisible
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.Status] profiles.Get")
	}

	return resp, nil
}

// History returns the agent's complete attempt history.
func (s *Service) History(ctx context.Context, user *users.User) (*HistoryResponse, error) {
	if user.Role != users.RoleAgent {
		return nil, apperrors.ErrForbidden
	}

	attempts, err := s.tracker.AllAttempts(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.History] AllAttempts")
	}

	return &HistoryResponse{
		UserID:        user.ID,
		TotalAttempts: len(attempts),
		Attempts:      attempts,
	}, nil
}

type bvnCheck struct {
	verified       bool
	fullName       string
	phoneMatch     bool
	nameMatchScore int
	callError      string
}

func (r bvnCheck) failureReason() string {
	if r.callError != "" {
		return r.callError
	}
	return fmt.Sprintf("Phone match: %t, Name score: %d", r.phoneMatch, r.nameMatchScore)
}

type ninCheck struct {
	verified  bool
	fullName  string
	state     string
	lga       string
	dobMatch  bool
	callError string
}

func (r ninCheck) failureReason() string {
	if r.callError != "" {
		return r.callError
	}
	return fmt.Sprintf("DOB match: %t", r.dobMatch)
}

func (s *Service) verifyBVN(ctx context.Context, userID, bvn, phone string) bvnCheck {
	attempt, err := s.tracker.RecordAttempt(ctx, userID, AttemptBVN)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to record bvn attempt")
		return bvnCheck{callError: "verification unavailable"}
	}

	outcome := s.provider.VerifyBVN(ctx, bvn, phone)
	if !outcome.OK {
		s.settleAttempt(ctx, attempt, StatusFailed, outcome.LastError, outcome.Attempts)
		return bvnCheck{callError: "API call failed after retries"}
	}

	result := bvnCheck{
		fullName:       outcome.Record.FullName,
		phoneMatch:     outcome.Record.PhoneNumber == phone,
		nameMatchScore: advisoryNameMatchScore,
	}
	result.verified = result.phoneMatch && result.nameMatchScore >= nameMatchThreshold

	status := StatusSuccess
	reason := ""
	if !result.verified {
		status = StatusFailed
		reason = result.failureReason()
	}
	s.settleAttempt(ctx, attempt, status, reason, outcome.Attempts)
	return result
}

func (s *Service) verifyNIN(ctx context.Context, userID, nin, dob string) ninCheck {
	attempt, err := s.tracker.RecordAttempt(ctx, userID, AttemptNIN)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to record nin attempt")
		return ninCheck{callError: "verification unavailable"}
	}

	outcome := s.provider.VerifyNIN(ctx, nin, dob)
	if !outcome.OK {
		s.settleAttempt(ctx, attempt, StatusFailed, outcome.LastError, outcome.Attempts)
		return ninCheck{callError: "API call failed after retries"}
	}

	result := ninCheck{
		fullName: outcome.Record.FullName,
		state:    outcome.Record.State,
		lga:      outcome.Record.LGA,
		dobMatch: outcome.Record.DateOfBirth == dob,
	}
	result.verified = result.dobMatch

	status := StatusSuccess
	reason := ""
	if !result.verified {
		status = StatusFailed
		reason = result.failureReason()
	}
	s.settleAttempt(ctx, attempt, status, reason, outcome.Attempts)
	return result
}

func (s *Service) settleAttempt(ctx context.Context, attempt *Attempt, status AttemptStatus, reason string, count int) {
	if err := s.tracker.UpdateOutcome(ctx, attempt, status, reason, count); err != nil {
		s.logger.Error().Err(err).Str("attempt_id", attempt.ID).Msg("failed to settle attempt")
	}
}
