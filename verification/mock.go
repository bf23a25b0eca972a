package verification

import (
	"context"
	"time"
)

// MockProvider answers verification calls deterministically so the rest of
// the system is testable without a live Youverify account. The returned
// payload echoes the caller-supplied phone/dob, so the matching rules always
// pass.
type MockProvider struct {
	latency   time.Duration
	sleepFunc func(time.Duration)
}

var _ Provider = (*MockProvider)(nil)

type MockOption func(*MockProvider)

func WithMockLatency(latency time.Duration) MockOption {
	return func(m *MockProvider) {
		m.latency = latency
	}
}

func NewMockProvider(options ...MockOption) *MockProvider {
	m := &MockProvider{
		latency:   time.Second, // simulate network latency
		sleepFunc: time.Sleep,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *MockProvider) VerifyBVN(ctx context.Context, bvn, phone string) CallOutcome {
	m.sleepFunc(m.latency)
	return CallOutcome{
		OK:       true,
		Attempts: 1,
		Record: Record{
			FullName:    "John Doe",
			PhoneNumber: phone, // match provided phone for success
			DateOfBirth: "1990-01-15",
			Status:      "verified",
		},
	}
}

func (m *MockProvider) VerifyNIN(ctx context.Context, nin, dob string) CallOutcome {
	m.sleepFunc(m.latency)
	return CallOutcome{
		OK:       true,
		Attempts: 1,
		Record: Record{
			FullName:    "John Doe",
			State:       "Lagos",
			LGA:         "Ikeja",
			DateOfBirth: dob, // match provided DOB for success
			Status:      "verified",
		},
	}
}
