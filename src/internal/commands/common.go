package commands

import (
	"fmt"

	"github.com/cdnsift/cdnsift/src/internal/config"
	"github.com/cdnsift/cdnsift/src/internal/ranges"
	"github.com/cdnsift/cdnsift/src/internal/resolver"
)

// loadConfigOrInit returns the effective configuration, materializing the
// built-in default config file on first run. An empty configPath means the
// per-user default location.
func loadConfigOrInit(configPath string) (*config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if _, err := config.EnsureDefault(path); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

// newResolver picks the DNS server: the command line beats the config file,
// and the config file beats the system resolver.
func newResolver(ctx *AppContext, cfg *config.Config) (*resolver.Resolver, error) {
	address := ctx.Resolver
	if address == "" {
		address = cfg.Resolver
	}
	if address == "" {
		return resolver.NewSystem(), nil
	}
	return resolver.New(address)
}

// newCache builds the CIDR cache handle belonging to cfg.
func newCache(cfg *config.Config) *ranges.Cache {
	return ranges.NewCache(cfg.CacheFile(), cfg.Interval.Duration())
}
