package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cdnsift/cdnsift/src/internal/commands"
	"github.com/cdnsift/cdnsift/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", "", "Path to configuration file (default ~/.config/cdnsift/config.yaml)")
	flag.StringVar(&ctx.Resolver, "resolver", "", "DNS server to resolve hosts with (ip or ip:port)")
	flag.IntVar(&ctx.Threads, "t", 100, "Number of concurrent DNS lookups")
	flag.BoolVar(&ctx.AppendCDN, "a", false, "Append CDN hosts to the output instead of dropping them")
	flag.BoolVar(&ctx.Verbose, "v", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cdnsift - sift CDN hosts out of a host list\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [ports]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads hosts from stdin, one per line. Hosts resolving into a CDN range\n")
		fmt.Fprintf(os.Stderr, "are dropped (or kept with -a); everything else is printed, expanded\n")
		fmt.Fprintf(os.Stderr, "with the given ports (e.g. 80,443).\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  refresh                 Force a CIDR cache refresh from all providers\n")
		fmt.Fprintf(os.Stderr, "  serve                   Run the HTTP API server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("cdnsift %s (commit: %s, date: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateRefreshCommand(),
		commands.CreateServeCommand(),
	}

	args := flag.Args()

	if len(args) > 0 {
		for _, cmd := range cmds {
			if cmd.Name() == args[0] {
				if err := cmd.Init(args[1:], ctx); err != nil {
					log.Fatalf("Failed to initialize command: %v", err)
				}

				if err := cmd.Run(); err != nil {
					log.Fatalf("Failed to run command: %v", err)
				}

				os.Exit(0)
			}
		}
	}

	// No subcommand word: scan stdin, with an optional leading port list.
	scan := commands.CreateScanCommand()
	if err := scan.Init(args, ctx); err != nil {
		log.Fatalf("Failed to initialize command: %v", err)
	}

	if err := scan.Run(); err != nil {
		log.Fatalf("Failed to run command: %v", err)
	}
}
