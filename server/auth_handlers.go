package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/The-entrepreneur/reent/auth"
	apperrors "github.com/The-entrepreneur/reent/internal/errors"
	"github.com/The-entrepreneur/reent/users"
)

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	BusinessName string `json:"business_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// RegisterHandler creates a new user account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
			return
		}

		role := users.RoleType(req.Role)
		if req.Role == "" {
			role = users.RoleTenant
		}

		user, err := s.auth.Register(r.Context(), auth.RegisterParams{
			Email:        req.Email,
			Password:     req.Password,
			Phone:        req.Phone,
			Role:         role,
			BusinessName: req.BusinessName,
		})
		if err != nil {
			var vErr *auth.ValidationError
			if apperrors.As(err, &vErr) {
				writeError(w, http.StatusBadRequest, "bad_request", vErr.Error())
				return
			}
			// ErrEmailTaken maps to 400; anything unexpected (repo or
			// database failure) maps to 500.
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler checks credentials and issues a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
			return
		}

		pair, err := s.auth.Login(r.Context(), req.Email, req.Password, s.clientIP(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}

// RefreshHandler exchanges a refresh token for a new token pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "refresh_token is required")
			return
		}

		pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler revokes all of the caller's refresh tokens.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
			return
		}

		if err := s.auth.Logout(r.Context(), rawToken); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	}
}

// CurrentUserHandler returns the authenticated user's profile.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
			return
		}

		user, err := s.auth.CurrentUser(r.Context(), rawToken)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// clientIP resolves the address the login throttle keys on. X-Forwarded-For
// is forgeable by direct clients, so it is only honored when the deployment
// declares a trusted proxy in front of the service; otherwise the socket
// address wins.
func (s *Server) clientIP(r *http.Request) string {
	if s.config.GetTrustProxyHeaders() {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			parts := strings.Split(fwd, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
