package main

import (
	"github.com/dtobolski/sitecv/internal/config"
	"github.com/dtobolski/sitecv/internal/scholar"
)

var (
	scholarAuthorID string
	scholarHL       string
)

// mustScholarClient builds a SerpApi client from the site configuration,
// exits when no API key is configured.
func mustScholarClient(cfg *config.Config) *scholar.Client {
	key := config.GetSerpAPIKey()
	if key == "" {
		exitWithScholarError(scholar.ErrMissingAPIKey, "")
	}

	return scholar.NewClient(key,
		scholar.WithEndpoint(cfg.Scholar.Endpoint),
		scholar.WithRateLimit(cfg.Scholar.RateLimit),
		scholar.WithMaxPages(cfg.Scholar.MaxPages),
	)
}

// scholarHLFor returns the interface language, the flag winning over config.
func scholarHLFor(cfg *config.Config) string {
	if scholarHL != "" {
		return scholarHL
	}
	return cfg.Scholar.HL
}
