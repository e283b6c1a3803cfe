// Package resolver performs IPv4 address lookups over DNS.
//
// Lookups go to a single configured server, either taken from the system
// resolver configuration or set explicitly. Only A records are queried; a
// host without one resolves to an error, never to an IPv6 address.
package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/cdnsift/cdnsift/src/internal/errors"
)

const (
	// DNS protocol defaults
	defaultDNSPort = "53"
	resolvConfPath = "/etc/resolv.conf"

	// fallbackServer is used when the system resolver config is unreadable.
	fallbackServer = "8.8.8.8:53"

	queryTimeout = 5 * time.Second
)

// Resolver resolves hostnames against one DNS server.
type Resolver struct {
	address string
	udp     *dns.Client
	tcp     *dns.Client
}

// New creates a Resolver for the given server address. A missing port
// defaults to 53.
func New(address string) (*Resolver, error) {
	host := address
	if !containsPort(host) {
		host = net.JoinHostPort(host, defaultDNSPort)
	}

	if _, _, err := net.SplitHostPort(host); err != nil {
		return nil, errors.NewResolveError(fmt.Sprintf("invalid DNS server address %q", address), err)
	}

	return &Resolver{
		address: host,
		udp: &dns.Client{
			Net:     "udp",
			Timeout: queryTimeout,
		},
		tcp: &dns.Client{
			Net:     "tcp",
			Timeout: queryTimeout,
		},
	}, nil
}

// NewSystem creates a Resolver backed by the first nameserver in
// /etc/resolv.conf, or by 8.8.8.8 when that file is unusable.
func NewSystem() *Resolver {
	server := fallbackServer
	if cfg, err := dns.ClientConfigFromFile(resolvConfPath); err == nil && len(cfg.Servers) > 0 {
		server = net.JoinHostPort(cfg.Servers[0], cfg.Port)
	}

	r, err := New(server)
	if err != nil {
		r, _ = New(fallbackServer)
	}
	return r
}

// Address returns the server this resolver queries, always as host:port.
func (r *Resolver) Address() string {
	return r.address
}

// LookupA resolves host to its first IPv4 address. The question name is
// always fully qualified, so search domains never apply.
func (r *Resolver) LookupA(ctx context.Context, host string) (netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)

	resp, _, err := r.udp.ExchangeContext(ctx, msg, r.address)
	if err != nil {
		return netip.Addr{}, errors.NewResolveError(fmt.Sprintf("failed to query %s for %s", r.address, host), err)
	}

	// Retry truncated answers over TCP.
	if resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(ctx, msg, r.address)
		if err != nil {
			return netip.Addr{}, errors.NewResolveError(fmt.Sprintf("failed to query %s for %s over TCP", r.address, host), err)
		}
	}

	if resp.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, errors.New(errors.ErrCodeResolve,
			fmt.Sprintf("lookup %s on %s: %s", host, r.address, dns.RcodeToString[resp.Rcode]))
	}

	for _, rr := range resp.Answer {
		record, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		v4 := record.A.To4()
		if v4 == nil {
			continue
		}
		if addr, ok := netip.AddrFromSlice(v4); ok {
			return addr.Unmap(), nil
		}
	}

	return netip.Addr{}, errors.New(errors.ErrCodeResolve, fmt.Sprintf("no A records for %s", host))
}

// containsPort checks if the address contains a port number.
func containsPort(address string) bool {
	// For IPv6 addresses like [::1]:53, check after the closing bracket
	if idx := strings.LastIndexByte(address, ']'); idx != -1 {
		return len(address) > idx+1 && address[idx+1] == ':'
	}
	return strings.LastIndexByte(address, ':') != -1
}
