package server

import (
	"encoding/json"
	"net/http"

	"github.com/The-entrepreneur/reent/users"
	"github.com/The-entrepreneur/reent/verification"
)

type verificationInitiateRequest struct {
	BVN         string `json:"bvn"`
	PhoneNumber string `json:"phone_number"`
	NIN         string `json:"nin"`
	DateOfBirth string `json:"date_of_birth"`
}

// authenticatedUser resolves the caller from the bearer token, writing the
// appropriate error response when that fails.
func (s *Server) authenticatedUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	rawToken, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
		return nil, false
	}

	user, err := s.auth.CurrentUser(r.Context(), rawToken)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return user, true
}

// VerificationInitiateHandler runs a BVN+NIN verification for an agent.
func (s *Server) VerificationInitiateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticatedUser(w, r)
		if !ok {
			return
		}

		var req verificationInitiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
			return
		}
		if !verification.ValidateBVN(req.BVN) {
			writeError(w, http.StatusBadRequest, "bad_request", "BVN must be exactly 11 digits")
			return
		}
		if !verification.ValidateNIN(req.NIN) {
			writeError(w, http.StatusBadRequest, "bad_request", "NIN must be exactly 11 digits")
			return
		}
		if !users.ValidatePhone(req.PhoneNumber) {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid Nigerian phone number")
			return
		}
		if !verification.ValidateDOB(req.DateOfBirth) {
			writeError(w, http.StatusBadRequest, "bad_request", "Date of birth must be YYYY-MM-DD")
			return
		}

		resp, err := s.verification.Initiate(r.Context(), user, verification.InitiateParams{
			BVN:   req.BVN,
			Phone: req.PhoneNumber,
			NIN:   req.NIN,
			DOB:   req.DateOfBirth,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// VerificationStatusHandler reports the agent's verification standing.
func (s *Server) VerificationStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticatedUser(w, r)
		if !ok {
			return
		}

		resp, err := s.verification.Status(r.Context(), user)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// VerificationAttemptsHandler returns the agent's full attempt history.
func (s *Server) VerificationAttemptsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticatedUser(w, r)
		if !ok {
			return
		}

		resp, err := s.verification.History(r.Context(), user)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
