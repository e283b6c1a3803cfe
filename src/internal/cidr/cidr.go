// Package cidr implements IPv4 CIDR parsing and membership matching against
// a set of network ranges.
package cidr

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"strings"
)

// Entry is a single IPv4 network range: a network address and a prefix
// length between 0 and 32.
type Entry struct {
	Network uint32
	Prefix  int
}

// ParseEntry parses a single "a.b.c.d/n" line into an Entry. The network
// address is kept as written; it is not canonicalized to its masked form,
// so "10.1.2.3/8" and "10.0.0.0/8" match the same addresses.
func ParseEntry(line string) (Entry, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(line))
	if err != nil {
		return Entry{}, err
	}
	if !prefix.Addr().Is4() {
		return Entry{}, fmt.Errorf("not an IPv4 range: %s", line)
	}
	return Entry{
		Network: addrToUint32(prefix.Addr()),
		Prefix:  prefix.Bits(),
	}, nil
}

// Contains reports whether addr falls inside the entry. Only IPv4 addresses
// can match; any other family is automatically outside every range.
func (e Entry) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.Is4() {
		return false
	}
	mask := prefixMask(e.Prefix)
	return addrToUint32(addr)&mask == e.Network&mask
}

// String renders the entry back into "a.b.c.d/n" form.
func (e Entry) String() string {
	return fmt.Sprintf("%d.%d.%d.%d/%d",
		byte(e.Network>>24), byte(e.Network>>16), byte(e.Network>>8), byte(e.Network), e.Prefix)
}

// Set is an immutable collection of entries built from raw CIDR text lines.
// Lines that fail to parse are dropped at construction; duplicates are kept.
type Set struct {
	entries []Entry
}

// NewSet builds a Set from raw lines, silently skipping anything that is not
// an IPv4 CIDR. Blank lines are ignored.
func NewSet(lines []string) *Set {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return &Set{entries: entries}
}

// FromReader builds a Set from newline-delimited CIDR text.
func FromReader(r io.Reader) (*Set, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewSet(lines), nil
}

// Contains reports whether addr falls inside any entry. The first matching
// entry wins; with zero entries nothing matches.
func (s *Set) Contains(addr netip.Addr) bool {
	for _, entry := range s.entries {
		if entry.Contains(addr) {
			return true
		}
	}
	return false
}

// ContainsString parses candidate as an IP address and checks membership.
// A candidate that is not a valid IP literal never matches.
func (s *Set) ContainsString(candidate string) bool {
	addr, err := netip.ParseAddr(candidate)
	if err != nil {
		return false
	}
	return s.Contains(addr)
}

// Len returns the number of parsed entries.
func (s *Set) Len() int {
	return len(s.entries)
}

func addrToUint32(addr netip.Addr) uint32 {
	b := addr.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// prefixMask returns a mask with the top bits set. Prefix 0 produces the
// empty mask, which matches every address.
func prefixMask(bits int) uint32 {
	if bits <= 0 {
		return 0
	}
	if bits >= 32 {
		return ^uint32(0)
	}
	return ^uint32(0) << (32 - bits)
}
