package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/The-entrepreneur/reent/auth"
	"github.com/The-entrepreneur/reent/internal/config"
	"github.com/The-entrepreneur/reent/internal/database"
	"github.com/The-entrepreneur/reent/server"
	"github.com/The-entrepreneur/reent/token"
	refreshrepopg "github.com/The-entrepreneur/reent/token/refresh/repopg"
	userrepopg "github.com/The-entrepreneur/reent/users/repopg"
	"github.com/The-entrepreneur/reent/verification"
	verificationrepopg "github.com/The-entrepreneur/reent/verification/repopg"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewDatabase()
	if err := db.Connect(ctx, c); err != nil {
		return fmt.Errorf("database.Connect: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("database.EnsureSchema: %w", err)
	}

	authService, err := buildAuthService(c, db, logger)
	if err != nil {
		return fmt.Errorf("buildAuthService: %w", err)
	}

	verificationService, err := buildVerificationService(c, db, logger)
	if err != nil {
		return fmt.Errorf("buildVerificationService: %w", err)
	}

	httpServer := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, authService, verificationService, logger),
	}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildAuthService(c config.Config, db *database.Database, logger zerolog.Logger) (*auth.Service, error) {
	if alg := c.GetJWTAlgorithm(); alg != "HS256" {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q, only HS256 is supported", alg)
	}

	codec := token.NewCodec(
		token.NewHMACSigner(c.GetJWTSecret()),
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
	)

	options := []auth.ServiceOption{auth.WithLogger(logger)}
	if limiter := buildLoginLimiter(c, logger); limiter != nil {
		options = append(options, auth.WithLoginLimiter(limiter))
	}

	return auth.NewService(auth.Repos{
		Users:         userrepopg.New(db),
		RefreshTokens: refreshrepopg.New(db),
	}, codec, options...)
}

func buildVerificationService(c config.Config, db *database.Database, logger zerolog.Logger) (*verification.Service, error) {
	tracker := verification.NewTracker(verificationrepopg.NewAttemptRepo(db))
	provider := verification.NewProviderFromConfig(c, logger)

	return verification.NewService(
		tracker,
		provider,
		verificationrepopg.NewProfileRepo(db),
		verification.WithServiceLogger(logger),
	)
}

// buildLoginLimiter returns nil when no Redis URL is configured; logins then
// run unthrottled rather than failing.
func buildLoginLimiter(c config.Config, logger zerolog.Logger) auth.LoginLimiter {
	redisURL := c.GetRedisURL()
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid REDIS_URL, login throttling disabled")
		return nil
	}

	return auth.NewRedisLoginLimiter(redis.NewClient(opts), c.GetLoginMaxAttempts(), c.GetLoginWindow())
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
