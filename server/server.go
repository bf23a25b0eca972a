package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/The-entrepreneur/reent/auth"
	"github.com/The-entrepreneur/reent/internal/config"
	"github.com/The-entrepreneur/reent/verification"
)

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	auth         *auth.Service
	verification *verification.Service
	logger       zerolog.Logger
}

func New(cfg config.Config, authService *auth.Service, verificationService *verification.Service, logger zerolog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		auth:         authService,
		verification: verificationService,
		logger:       logger,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.logger.Info().Str("route", route).Msg("registered")
	}
}
