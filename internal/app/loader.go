package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kyaoi/codepick/internal/listing"
	"github.com/kyaoi/codepick/internal/session"
	"github.com/kyaoi/codepick/internal/tree"
)

// ErrNoServer is returned when no listing service URL is configured.
var ErrNoServer = errors.New("no file-listing service URL configured")

// Config carries the settings needed to build the load pipeline.
type Config struct {
	ServerURL string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
	Policy    tree.Policy
	Logger    *slog.Logger
}

// NewLoader assembles the listing client, the optional cache and the session
// loader from cfg.
func NewLoader(cfg Config) (*session.Loader, error) {
	if cfg.ServerURL == "" {
		return nil, ErrNoServer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := listing.NewClient(cfg.ServerURL,
		listing.WithTimeout(cfg.Timeout),
		listing.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("listing client: %w", err)
	}

	lister := listing.NewCached(client, cfg.CacheSize, cfg.CacheTTL)
	return session.NewLoader(lister, cfg.Policy, logger), nil
}
