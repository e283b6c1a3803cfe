package commands

import (
	"context"
	"flag"

	"github.com/cdnsift/cdnsift/src/internal/config"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/ranges"
)

// RefreshCommand forces a CIDR cache refresh regardless of its age.
type RefreshCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

// CreateRefreshCommand creates a new refresh command.
func CreateRefreshCommand() *RefreshCommand {
	return &RefreshCommand{
		fs: flag.NewFlagSet("refresh", flag.ExitOnError),
	}
}

// Name returns the command name.
func (c *RefreshCommand) Name() string {
	return c.fs.Name()
}

// Init initializes the refresh command with arguments.
func (c *RefreshCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	// Progress reporting is the point of this command, so raise the log
	// floor unless -v already did.
	if !log.IsVerbose() {
		log.SetLevel(log.LevelInfo)
	}

	cfg, err := loadConfigOrInit(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	return nil
}

// Run fetches all providers and replaces the cache.
func (c *RefreshCommand) Run() error {
	cache := newCache(c.cfg)
	fetcher := ranges.NewFetcher(c.cfg.Providers)

	count, err := fetcher.Fetch(context.Background(), cache.Path())
	if err != nil {
		return err
	}

	log.Infof("Fetched %d CIDR ranges into %s", count, cache.Path())
	return nil
}
