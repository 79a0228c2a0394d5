package cli

import (
	"time"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/config"
	"github.com/rshade/pagesel/pkg/version"
)

// newClient builds the collection client from the effective configuration.
// The product token for ver is appended to the configured user agent.
func newClient(cfg *config.Config, ver string) *artic.Client {
	opts := []artic.Option{
		artic.WithBaseURL(cfg.API.BaseURL),
		artic.WithPageSize(cfg.UI.PageSize),
		artic.WithTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second),
		artic.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		artic.WithUserAgent(cfg.API.UserAgent + " " + version.UserAgentToken(ver)),
	}
	if len(cfg.API.Fields) > 0 {
		opts = append(opts, artic.WithFields(cfg.API.Fields))
	}
	return artic.NewClient(opts...)
}
