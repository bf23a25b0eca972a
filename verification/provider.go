package verification

import "context"

// Record is the identity payload returned by a completed provider call.
type Record struct {
	FullName    string
	PhoneNumber string
	DateOfBirth string
	State       string
	LGA         string
	Status      string
}

// CallOutcome is the tagged result of one verification call, including its
// retries. The retry loop never reports transport failures as errors; a call
// that exhausts its retries comes back with OK=false and the last failure
// reason, so callers produce a uniform "verification failed" response.
type CallOutcome struct {
	OK        bool   // A 200 response was obtained within the retry budget
	Record    Record // Payload, only meaningful when OK
	Attempts  int    // Provider calls consumed, including retries
	LastError string // Last transport/status error; terminal reason when !OK
}

// Provider performs the two identity lookups against an external source.
// Implementations: YouverifyClient (live HTTP) and MockProvider
// (deterministic, for non-production configurations). Both are blocking;
// the live one can take up to ~90s in the worst case (3 attempts x 30s
// timeout plus backoff), so callers must not hold unrelated locks across a
// call.
type Provider interface {
	VerifyBVN(ctx context.Context, bvn, phone string) CallOutcome
	VerifyNIN(ctx context.Context, nin, dob string) CallOutcome
}
