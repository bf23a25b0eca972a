package verification

import (
	"github.com/rs/zerolog"

	"github.com/The-entrepreneur/reent/internal/config"
)

// NewProviderFromConfig selects the verification strategy at construction:
// the deterministic mock when mock mode is on or no API key is configured,
// the live Youverify client otherwise.
func NewProviderFromConfig(cfg config.ProviderConfig, logger zerolog.Logger) Provider {
	if cfg.GetMockProvider() || cfg.GetProviderAPIKey() == "" {
		return NewMockProvider()
	}
	return NewYouverifyClient(cfg.GetProviderBaseURL(), cfg.GetProviderAPIKey(),
		WithYouverifyLogger(logger))
}
