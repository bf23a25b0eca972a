package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxCallAttempts = 3
	retryDelay      = 5 * time.Second
	callTimeout     = 30 * time.Second
)

// callResult classifies one iteration of the retry loop.
type callResult int

const (
	callSuccess callResult = iota
	callRetryable
	callTerminal
)

// YouverifyClient is the live Provider implementation. Each Verify call makes
// up to maxCallAttempts POSTs with a fixed delay between attempts; rate
// limits and timeouts retry, any other non-200 records the error and retries
// until the budget runs out.
type YouverifyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
	sleepFunc  func(time.Duration) // injectable for tests
}

var _ Provider = (*YouverifyClient)(nil)

type YouverifyOption func(*YouverifyClient)

func WithHTTPClient(client *http.Client) YouverifyOption {
	return func(c *YouverifyClient) {
		c.httpClient = client
	}
}

func WithYouverifyLogger(logger zerolog.Logger) YouverifyOption {
	return func(c *YouverifyClient) {
		c.logger = logger
	}
}

func WithSleepFunc(sleep func(time.Duration)) YouverifyOption {
	return func(c *YouverifyClient) {
		c.sleepFunc = sleep
	}
}

func NewYouverifyClient(baseURL, apiKey string, options ...YouverifyOption) *YouverifyClient {
	c := &YouverifyClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		logger:    zerolog.Nop(),
		sleepFunc: time.Sleep,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: callTimeout}
	}
	return c
}

func (c *YouverifyClient) VerifyBVN(ctx context.Context, bvn, phone string) CallOutcome {
	return c.call(ctx, "/identities/bvn", map[string]any{
		"id":       bvn,
		"metadata": map[string]string{"phone": phone},
	})
}

func (c *YouverifyClient) VerifyNIN(ctx context.Context, nin, dob string) CallOutcome {
	return c.call(ctx, "/identities/nin", map[string]any{
		"id":       nin,
		"metadata": map[string]string{"dob": dob},
	})
}

type providerResponse struct {
	Data struct {
		FullName      string `json:"fullName"`
		PhoneNumber   string `json:"phoneNumber"`
		DateOfBirth   string `json:"dateOfBirth"`
		StateOfOrigin string `json:"stateOfOrigin"`
		LGA           string `json:"lga"`
		Status        string `json:"status"`
	} `json:"data"`
}

// call runs the bounded retry loop. Every iteration produces an enumerated
// outcome; nothing escapes the loop as an error.
func (c *YouverifyClient) call(ctx context.Context, endpoint string, payload map[string]any) CallOutcome {
	outcome := CallOutcome{}

	for attempt := 1; attempt <= maxCallAttempts; attempt++ {
		outcome.Attempts = attempt

		record, result, errMsg := c.post(ctx, endpoint, payload)
		switch result {
		case callSuccess:
			outcome.OK = true
			outcome.Record = record
			return outcome
		case callRetryable, callTerminal:
			outcome.LastError = errMsg
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Str("error", errMsg).
				Msg("verification call failed")
		}

		if attempt < maxCallAttempts {
			c.sleepFunc(retryDelay)
		}
	}

	if outcome.LastError == "" {
		outcome.LastError = "API call failed after retries"
	}
	return outcome
}

func (c *YouverifyClient) post(ctx context.Context, endpoint string, payload map[string]any) (Record, callResult, string) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Record{}, callTerminal, err.Error()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return Record{}, callTerminal, err.Error()
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors are dominated by timeouts; treat them as
		// transient and retry.
		return Record{}, callRetryable, "API timeout"
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var parsed providerResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return Record{}, callTerminal, fmt.Sprintf("invalid provider response: %v", err)
		}
		return Record{
			FullName:    parsed.Data.FullName,
			PhoneNumber: parsed.Data.PhoneNumber,
			DateOfBirth: parsed.Data.DateOfBirth,
			State:       parsed.Data.StateOfOrigin,
			LGA:         parsed.Data.LGA,
			Status:      parsed.Data.Status,
		}, callSuccess, ""
	case resp.StatusCode == http.StatusTooManyRequests:
		return Record{}, callRetryable, "HTTP 429: rate limited"
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Record{}, callRetryable, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
}
