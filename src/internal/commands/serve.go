package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cdnsift/cdnsift/src/internal/api"
	"github.com/cdnsift/cdnsift/src/internal/config"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/ranges"
)

// ServeCommand runs the HTTP API server.
type ServeCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	bindAddr string
}

// CreateServeCommand creates a new serve command.
func CreateServeCommand() *ServeCommand {
	return &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ExitOnError),
	}
}

// Name returns the command name.
func (c *ServeCommand) Name() string {
	return c.fs.Name()
}

// Init initializes the serve command with arguments.
func (c *ServeCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	c.fs.StringVar(&c.bindAddr, "bind", "127.0.0.1:8080", "Address to bind the HTTP server (e.g., 127.0.0.1:8080)")

	if err := c.fs.Parse(args); err != nil {
		return err
	}

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

// Run ensures the cache is usable, then serves the API until a signal or a
// server error ends it.
func (c *ServeCommand) Run() error {
	runCtx := context.Background()

	cache := newCache(c.cfg)
	fetcher := ranges.NewFetcher(c.cfg.Providers)
	if err := cache.EnsureFresh(runCtx, fetcher); err != nil {
		return err
	}

	set, err := cache.Load()
	if err != nil {
		return err
	}
	log.Infof("Loaded %d CIDR ranges from %s", set.Len(), cache.Path())

	res, err := newResolver(c.ctx, c.cfg)
	if err != nil {
		return err
	}

	handler := api.NewHandler(c.cfg, cache, fetcher, set, res.LookupA, res.Address())
	server := api.NewServer(c.bindAddr, handler)

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- server.Start()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		if err != nil {
			return err
		}

	case sig := <-shutdown:
		log.Infof("Received signal %v, shutting down server...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Infof("Server stopped gracefully")
	}

	return nil
}
