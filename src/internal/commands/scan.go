package commands

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/cdnsift/cdnsift/src/internal/config"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/output"
	"github.com/cdnsift/cdnsift/src/internal/pipeline"
	"github.com/cdnsift/cdnsift/src/internal/ranges"
)

// ScanCommand is the default command: hosts on stdin, verdicts on stdout.
type ScanCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	ports []uint16

	in  io.Reader
	out io.Writer
}

// CreateScanCommand creates a new scan command reading stdin and writing
// stdout.
func CreateScanCommand() *ScanCommand {
	return &ScanCommand{
		fs:  flag.NewFlagSet("scan", flag.ExitOnError),
		in:  os.Stdin,
		out: os.Stdout,
	}
}

// Name returns the command name.
func (c *ScanCommand) Name() string {
	return c.fs.Name()
}

// Init parses the optional port list and any flags that follow it. The scan
// command has no subcommand word, so args start at the first positional.
func (c *ScanCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	// Mirror the global flags so they are also accepted after the port
	// list (cdnsift 80,443 -a).
	c.fs.StringVar(&ctx.Resolver, "resolver", ctx.Resolver, "DNS server to resolve hosts with (ip or ip:port)")
	c.fs.IntVar(&ctx.Threads, "t", ctx.Threads, "Number of concurrent DNS lookups")
	c.fs.BoolVar(&ctx.AppendCDN, "a", ctx.AppendCDN, "Append CDN hosts to the output instead of dropping them")
	c.fs.BoolVar(&ctx.Verbose, "v", ctx.Verbose, "Enable debug logging")

	var portsArg string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		portsArg = args[0]
		args = args[1:]
	}

	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if portsArg == "" && c.fs.NArg() > 0 {
		portsArg = c.fs.Arg(0)
	}

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	if portsArg != "" {
		ports, err := output.ParsePorts(portsArg)
		if err != nil {
			return err
		}
		c.ports = ports
	}

	cfg, err := loadConfigOrInit(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	return nil
}

// Run refreshes the CIDR cache if needed, then streams hosts through the
// classification pipeline.
func (c *ScanCommand) Run() error {
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

	res, err := newResolver(c.ctx, c.cfg)
	if err != nil {
		return err
	}
	log.Debugf("Resolving through %s", res.Address())

	policy, err := output.NewPolicy(c.ports, c.ctx.AppendCDN, c.cfg.OutputFormat)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Matcher: set,
		Lookup:  res.LookupA,
		Policy:  policy,
		Out:     output.NewWriter(c.out),
		Workers: c.ctx.Threads,
	}
	return p.Run(runCtx, c.in)
}
