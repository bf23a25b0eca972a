package verification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/The-entrepreneur/reent/verification"
)

func providerPayload(phone, dob string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"fullName":      "Adebayo Okonkwo",
			"phoneNumber":   phone,
			"dateOfBirth":   dob,
			"stateOfOrigin": "Oyo",
			"lga":           "Ibadan North",
			"status":        "verified",
		},
	}
}

func newTestClient(serverURL string, sleeps *[]time.Duration) *verification.YouverifyClient {
	return verification.NewYouverifyClient(serverURL, "test-api-key",
		verification.WithSleepFunc(func(d time.Duration) {
			*sleeps = append(*sleeps, d)
		}))
}

func TestYouverifySuccessFirstAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/identities/bvn", r.URL.Path)
		require.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "12345678901", body["id"])

		_ = json.NewEncoder(w).Encode(providerPayload("+2348012345678", "1990-01-15"))
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(server.URL, &sleeps)

	outcome := client.VerifyBVN(context.Background(), "12345678901", "+2348012345678")
	require.True(t, outcome.OK)
	require.Equal(t, 1, outcome.Attempts)
	require.Equal(t, "Adebayo Okonkwo", outcome.Record.FullName)
	require.Equal(t, "+2348012345678", outcome.Record.PhoneNumber)
	require.Empty(t, sleeps)
}

func TestYouverifyRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(providerPayload("", "1990-01-15"))
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(server.URL, &sleeps)

	outcome := client.VerifyNIN(context.Background(), "98765432109", "1990-01-15")
	require.True(t, outcome.OK)
	require.Equal(t, 3, outcome.Attempts)
	require.Equal(t, "Oyo", outcome.Record.State)
	require.Equal(t, "Ibadan North", outcome.Record.LGA)

	// A fixed delay between attempts, and none after the last.
	require.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, sleeps)
}

func TestYouverifyGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(server.URL, &sleeps)

	outcome := client.VerifyBVN(context.Background(), "12345678901", "+2348012345678")
	require.False(t, outcome.OK)
	require.Equal(t, 3, outcome.Attempts)
	require.Equal(t, int32(3), calls.Load())
	require.Contains(t, outcome.LastError, "HTTP 502")
	require.Len(t, sleeps, 2)
}

func TestYouverifyTransportErrorIsRetryable(t *testing.T) {
	// A server that is already closed produces connection errors, the same
	// class of failure as a timeout.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	var sleeps []time.Duration
	client := newTestClient(server.URL, &sleeps)

	outcome := client.VerifyBVN(context.Background(), "12345678901", "+2348012345678")
	require.False(t, outcome.OK)
	require.Equal(t, 3, outcome.Attempts)
	require.Equal(t, "API timeout", outcome.LastError)
}

func TestMockProviderEchoesInputs(t *testing.T) {
	provider := verification.NewMockProvider(verification.WithMockLatency(0))

	bvn := provider.VerifyBVN(context.Background(), "12345678901", "+2348012345678")
	require.True(t, bvn.OK)
	require.Equal(t, "John Doe", bvn.Record.FullName)
	require.Equal(t, "+2348012345678", bvn.Record.PhoneNumber)

	nin := provider.VerifyNIN(context.Background(), "98765432109", "1993-07-02")
	require.True(t, nin.OK)
	require.Equal(t, "Lagos", nin.Record.State)
	require.Equal(t, "Ikeja", nin.Record.LGA)
	require.Equal(t, "1993-07-02", nin.Record.DateOfBirth)
}
