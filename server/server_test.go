package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/The-entrepreneur/reent/auth"
	"github.com/The-entrepreneur/reent/internal/config"
	"github.com/The-entrepreneur/reent/server"
	"github.com/The-entrepreneur/reent/token"
	refreshrepofake "github.com/The-entrepreneur/reent/token/refresh/repofake"
	"github.com/The-entrepreneur/reent/users"
	userrepofake "github.com/The-entrepreneur/reent/users/repofake"
	"github.com/The-entrepreneur/reent/verification"
	verificationrepofake "github.com/The-entrepreneur/reent/verification/repofake"
)

const (
	testEmail    = "agent@example.com"
	testPassword = "Password123"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return setupTestServerWith(t, userrepofake.NewFakeUserRepo(), nil)
}

func setupTestServerWith(t *testing.T, usersRepo users.Repo, limiter auth.LoginLimiter) *httptest.Server {
	t.Helper()

	var options []auth.ServiceOption
	if limiter != nil {
		options = append(options, auth.WithLoginLimiter(limiter))
	}

	codec := token.NewCodec(token.NewHMACSigner("test-signing-secret"))
	authService, err := auth.NewService(auth.Repos{
		Users:         usersRepo,
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, codec, options...)
	require.NoError(t, err)

	tracker := verification.NewTracker(verificationrepofake.NewFakeAttemptRepo())
	verificationService, err := verification.NewService(
		tracker,
		verification.NewMockProvider(verification.WithMockLatency(0)),
		verificationrepofake.NewFakeProfileRepo(),
	)
	require.NoError(t, err)

	ts := httptest.NewServer(server.New(config.New(), authService, verificationService, zerolog.Nop()))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any, bearer string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, url, bearer string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func registerAndLogin(t *testing.T, ts *httptest.Server, role string) (accessToken, refreshToken string) {
	t.Helper()

	resp := postJSON(t, ts.URL+"/api/v1/auth/register", map[string]string{
		"email":    testEmail,
		"password": testPassword,
		"phone":    "08012345678",
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/auth/login", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "bearer", body["token_type"])
	return body["access_token"].(string), body["refresh_token"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := getJSON(t, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestAuthFlowOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	accessToken, refreshToken := registerAndLogin(t, ts, "tenant")

	// Who am I.
	resp := getJSON(t, ts.URL+"/api/v1/auth/me", accessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody(t, resp)
	require.Equal(t, testEmail, me["email"])
	require.NotContains(t, me, "password_hash")

	// Refresh rotates, then the old refresh token is dead.
	resp = postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{"refresh_token": refreshToken}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeBody(t, resp)
	require.NotEqual(t, refreshToken, rotated["refresh_token"])

	resp = postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{"refresh_token": refreshToken}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Logout, after which the rotated refresh token fails too.
	resp = postJSON(t, ts.URL+"/api/v1/auth/logout", nil, accessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{"refresh_token": rotated["refresh_token"].(string)}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := setupTestServer(t)
	registerAndLogin(t, ts, "tenant")

	resp := postJSON(t, ts.URL+"/api/v1/auth/login", map[string]string{
		"email":    testEmail,
		"password": "WrongPassword1",
	}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid email or password", decodeBody(t, resp)["message"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	registerAndLogin(t, ts, "tenant")

	resp := postJSON(t, ts.URL+"/api/v1/auth/register", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	ts := setupTestServer(t)

	for _, url := range []string{
		ts.URL + "/api/v1/auth/me",
		ts.URL + "/api/v1/verification/status",
		ts.URL + "/api/v1/verification/attempts",
	} {
		resp := getJSON(t, url, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, url)
		resp.Body.Close()
	}

	resp := getJSON(t, ts.URL+"/api/v1/auth/me", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestVerificationFlowOverHTTP(t *testing.T) {
	ts := setupTestServer(t)
	accessToken, _ := registerAndLogin(t, ts, "agent")

	initiate := map[string]string{
		"bvn":           "12345678901",
		"phone_number":  "+2348012345678",
		"nin":           "98765432109",
		"date_of_birth": "1990-01-15",
	}
	resp := postJSON(t, ts.URL+"/api/v1/verification/initiate", initiate, accessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "verified", body["overall_status"])

	resp = getJSON(t, ts.URL+"/api/v1/verification/status", accessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decodeBody(t, resp)
	require.Equal(t, "verified", status["verification_status"])
	require.Equal(t, float64(50), status["credibility_score"])
	require.Equal(t, true, status["verification_badge_visible"])

	resp = getJSON(t, ts.URL+"/api/v1/verification/attempts", accessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decodeBody(t, resp)
	require.Equal(t, float64(2), history["total_attempts"])
}

func TestVerificationRejectsNonAgents(t *testing.T) {
	ts := setupTestServer(t)
	accessToken, _ := registerAndLogin(t, ts, "tenant")

	resp := getJSON(t, ts.URL+"/api/v1/verification/status", accessToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

// failingUserRepo simulates a user store whose writes fail.
type failingUserRepo struct {
	*userrepofake.FakeUserRepo
}

func (r *failingUserRepo) Create(ctx context.Context, user *users.User) error {
	return errors.New("connection refused")
}

func TestRegisterInfrastructureFailureIsServerError(t *testing.T) {
	ts := setupTestServerWith(t, &failingUserRepo{userrepofake.NewFakeUserRepo()}, nil)

	resp := postJSON(t, ts.URL+"/api/v1/auth/register", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Internal server error", decodeBody(t, resp)["message"])
}

func TestRegisterValidationFailureIsBadRequest(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/auth/register", map[string]string{
		"email":    testEmail,
		"password": "weak",
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "password must be at least 8 characters long", decodeBody(t, resp)["message"])
}

// captureLimiter records the client IP the throttle was keyed on.
type captureLimiter struct {
	lastIP string
}

func (l *captureLimiter) Enforce(ctx context.Context, email, ip string) error {
	l.lastIP = ip
	return nil
}

func loginWithForwardedFor(t *testing.T, ts *httptest.Server) {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": testEmail, "password": testPassword})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/auth/login", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginIgnoresForwardedForByDefault(t *testing.T) {
	limiter := &captureLimiter{}
	ts := setupTestServerWith(t, userrepofake.NewFakeUserRepo(), limiter)
	registerAndLogin(t, ts, "tenant")

	loginWithForwardedFor(t, ts)

	// A direct client cannot pick its own throttle key; the socket address
	// wins.
	require.Equal(t, "127.0.0.1", limiter.lastIP)
}

func TestLoginHonorsForwardedForBehindTrustedProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	limiter := &captureLimiter{}
	ts := setupTestServerWith(t, userrepofake.NewFakeUserRepo(), limiter)
	registerAndLogin(t, ts, "tenant")

	loginWithForwardedFor(t, ts)

	require.Equal(t, "203.0.113.50", limiter.lastIP)
}

func TestVerificationValidatesInput(t *testing.T) {
	ts := setupTestServer(t)
	accessToken, _ := registerAndLogin(t, ts, "agent")

	cases := []map[string]string{
		{"bvn": "123", "phone_number": "+2348012345678", "nin": "98765432109", "date_of_birth": "1990-01-15"},
		{"bvn": "12345678901", "phone_number": "+15551234567", "nin": "98765432109", "date_of_birth": "1990-01-15"},
		{"bvn": "12345678901", "phone_number": "+2348012345678", "nin": "987", "date_of_birth": "1990-01-15"},
		{"bvn": "12345678901", "phone_number": "+2348012345678", "nin": "98765432109", "date_of_birth": "15/01/1990"},
	}
	for i, payload := range cases {
		resp := postJSON(t, ts.URL+"/api/v1/verification/initiate", payload, accessToken)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, fmt.Sprintf("case %d", i))
		resp.Body.Close()
	}
}
