package server

import "net/http"

const (
	routeHealth = "GET /health"

	routeRegister = "POST /api/v1/auth/register"
	routeLogin    = "POST /api/v1/auth/login"
	routeRefresh  = "POST /api/v1/auth/refresh"
	routeLogout   = "POST /api/v1/auth/logout"
	routeMe       = "GET /api/v1/auth/me"

	routeVerificationInitiate = "POST /api/v1/verification/initiate"
	routeVerificationStatus   = "GET /api/v1/verification/status"
	routeVerificationAttempts = "GET /api/v1/verification/attempts"
)

func (s *Server) initRoutes() {
	api := s.APIMiddleware()

	s.RegisterRouteFunc(routeHealth, ChainMiddleware(s.HealthHandler(), api...))

	s.RegisterRouteFunc(routeRegister, ChainMiddleware(s.RegisterHandler(), api...))
	s.RegisterRouteFunc(routeLogin, ChainMiddleware(s.LoginHandler(), api...))
	s.RegisterRouteFunc(routeRefresh, ChainMiddleware(s.RefreshHandler(), api...))
	s.RegisterRouteFunc(routeLogout, ChainMiddleware(s.LogoutHandler(), api...))
	s.RegisterRouteFunc(routeMe, ChainMiddleware(s.CurrentUserHandler(), api...))

	s.RegisterRouteFunc(routeVerificationInitiate, ChainMiddleware(s.VerificationInitiateHandler(), api...))
	s.RegisterRouteFunc(routeVerificationStatus, ChainMiddleware(s.VerificationStatusHandler(), api...))
	s.RegisterRouteFunc(routeVerificationAttempts, ChainMiddleware(s.VerificationAttemptsHandler(), api...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
