package ranges

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"time"

	"github.com/cdnsift/cdnsift/src/internal/cidr"
	"github.com/cdnsift/cdnsift/src/internal/errors"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/utils"
)

// CacheState describes the freshness of the persisted CIDR set.
type CacheState int

const (
	// StateFresh means the cache file exists and is younger than the
	// configured interval.
	StateFresh CacheState = iota

	// StateStale means the cache file exists but is older than the interval.
	StateStale

	// StateMissing means there is no cache file yet. This covers both the
	// first-run bootstrap and a cache deleted out from under an existing
	// config; either way the only sane move is to fetch.
	StateMissing
)

// Cache decides when the persisted CIDR set needs refreshing. The file's
// mtime is the freshness clock; no separate timestamp is stored.
type Cache struct {
	path     string
	interval time.Duration
}

// NewCache creates a Cache over the file at path with the given refresh
// interval.
func NewCache(path string, interval time.Duration) *Cache {
	return &Cache{path: path, interval: interval}
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}

// State inspects the cache file and reports its freshness.
func (c *Cache) State() (CacheState, error) {
	age, err := c.Age()
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return StateMissing, nil
		}
		return StateMissing, errors.NewCacheError("failed to stat CIDR cache", err)
	}
	if age > c.interval {
		return StateStale, nil
	}
	return StateFresh, nil
}

// Age returns the time elapsed since the cache file was last written.
func (c *Cache) Age() (time.Duration, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return 0, err
	}
	return time.Since(info.ModTime()), nil
}

// EnsureFresh refreshes the cache through the fetcher when it is missing or
// stale, and leaves a fresh cache untouched.
func (c *Cache) EnsureFresh(ctx context.Context, fetcher *Fetcher) error {
	state, err := c.State()
	if err != nil {
		return err
	}

	switch state {
	case StateFresh:
		log.Debugf("CIDR cache is fresh: %s", c.path)
		return nil
	case StateStale:
		log.Debugf("CIDR cache is older than %v, refreshing", c.interval)
	case StateMissing:
		log.Debugf("CIDR cache not found, fetching: %s", c.path)
	}

	_, err = fetcher.Fetch(ctx, c.path)
	return err
}

// Load reads the cache file into a matcher set. Lines that are not valid
// IPv4 CIDR ranges are skipped.
func (c *Cache) Load() (*cidr.Set, error) {
	file, err := os.Open(c.path)
	if err != nil {
		return nil, errors.NewCacheError("failed to open CIDR cache", err)
	}
	defer utils.CloseOrWarn(file)

	set, err := cidr.FromReader(file)
	if err != nil {
		return nil, errors.NewCacheError("failed to read CIDR cache", err)
	}

	log.Debugf("Loaded %d CIDR ranges from %s", set.Len(), c.path)
	return set, nil
}
