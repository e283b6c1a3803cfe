// Package pipeline reads hosts line by line, resolves them to IPv4
// addresses, and classifies each against a CDN range set. The output policy
// decides what every verdict prints.
package pipeline

import (
	"bufio"
	"context"
	"io"
	"net/netip"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cdnsift/cdnsift/src/internal/cidr"
	"github.com/cdnsift/cdnsift/src/internal/errors"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/output"
)

// DefaultWorkers bounds concurrent DNS lookups when no explicit worker
// count is configured.
const DefaultWorkers = 100

// maxLineLength guards the scanner against pathological input lines.
const maxLineLength = 1024 * 1024

// LookupFunc resolves a hostname to an IPv4 address.
type LookupFunc func(ctx context.Context, host string) (netip.Addr, error)

// Pipeline classifies hosts against a CIDR set and writes the verdict lines.
type Pipeline struct {
	Matcher *cidr.Set
	Lookup  LookupFunc
	Policy  *output.Policy
	Out     *output.Writer
	Workers int
}

// Run consumes hosts from r, one per line, until EOF. At most Workers hosts
// are in flight at a time; the next line is only read once a slot frees up,
// so arbitrarily large input never piles up in memory. Blank lines are
// skipped.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) error {
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		host := strings.TrimSpace(scanner.Text())
		if host == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.process(gctx, host)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return errors.NewInternalError("failed to read input", err)
	}
	return nil
}

// process classifies a single host. An IP literal skips DNS entirely; a
// host that fails to resolve is dropped without output.
func (p *Pipeline) process(ctx context.Context, host string) {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		addr, err = p.Lookup(ctx, host)
		if err != nil {
			log.Debugf("Dropping %s: %v", host, err)
			return
		}
	}

	isCDN := p.Matcher.Contains(addr)
	p.Out.WriteLines(p.Policy.Lines(host, isCDN))
}
