// Package ranges maintains the on-disk set of provider CIDR ranges: fetching
// them from the configured provider URLs and deciding when the cached copy is
// too old to trust.
package ranges

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/cdnsift/cdnsift/src/internal/errors"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/utils"
)

const (
	fetchTimeout = 10 * time.Second
	maxBodySize  = 20 << 20

	// Matches the fan-in buffer of the sink; fetchers ahead of the writer by
	// more than this block until it catches up.
	sinkBuffer = 100
)

// cidrRegexp matches IPv4 CIDR literals with strict octet (0-255) and prefix
// (0-32) ranges. The slash and prefix are mandatory: bare addresses in
// provider documents are not ranges.
var cidrRegexp = regexp.MustCompile(`(([0-9]|[1-9][0-9]|1[0-9]{2}|2[0-4][0-9]|25[0-5])\.){3}([0-9]|[1-9][0-9]|1[0-9]{2}|2[0-4][0-9]|25[0-5])(/(3[0-2]|[1-2][0-9]|[0-9]))`)

// ExtractRanges returns every IPv4 CIDR literal found in text, in scan order.
func ExtractRanges(text string) []string {
	return cidrRegexp.FindAllString(text, -1)
}

// Fetcher downloads provider documents and extracts the CIDR ranges they
// publish. Providers are fetched concurrently and independently; one failing
// provider never fails the whole fetch.
type Fetcher struct {
	providers []string
	client    *http.Client
}

// NewFetcher creates a Fetcher for the given provider URLs.
func NewFetcher(providers []string) *Fetcher {
	return &Fetcher{
		providers: providers,
		client:    &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads every provider document, extracts all IPv4 CIDR ranges and
// streams them into the file at destPath. The file is written through a temp
// file in the same directory and renamed into place only when at least one
// range arrived, so an existing populated cache survives a bad run. Returns
// the number of ranges written.
//
// A fetch in which every provider fails or yields nothing is an error: an
// empty range set would classify every domain as non-CDN, which is worse
// than failing.
func (f *Fetcher) Fetch(ctx context.Context, destPath string) (int, error) {
	log.Infof("Updating CIDR ranges from %d providers...", len(f.providers))

	lines := make(chan string, sinkBuffer)
	var wg sync.WaitGroup
	for _, url := range f.providers {
		url := url
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.fetchProvider(ctx, url, lines)
		}()
	}
	go func() {
		wg.Wait()
		close(lines)
	}()

	count, err := writeRanges(destPath, lines)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, errors.New(errors.ErrCodeFetch, "no CIDR ranges fetched from any provider")
	}

	log.Infof("Updated successfully (%d ranges)", count)
	return count, nil
}

// fetchProvider downloads one provider document and sends every extracted
// range into the sink. All failures are local to the provider.
func (f *Fetcher) fetchProvider(ctx context.Context, url string, sink chan<- string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warnf("Failed to fetch %s: %v", url, err)
		return
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warnf("Failed to fetch %s: %v", url, err)
		return
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Warnf("Failed to fetch %s with status %s", url, resp.Status)
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warnf("Failed to read %s: %v", url, err)
		return
	}

	matches := ExtractRanges(string(body))
	for _, match := range matches {
		sink <- match
	}
	log.Infof("%s DONE (%d ranges)", url, len(matches))
}

// writeRanges drains the sink into a temp file, renaming it over destPath on
// success. It always consumes the channel to completion so that no fetcher
// goroutine is left blocked on a send.
func writeRanges(destPath string, lines <-chan string) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".cidr-*")
	if err != nil {
		for range lines {
		}
		return 0, errors.NewCacheError("failed to create CIDR cache file", err)
	}

	count := 0
	var writeErr error
	for line := range lines {
		if writeErr != nil {
			continue
		}
		if _, err := fmt.Fprintln(tmp, line); err != nil {
			writeErr = err
			continue
		}
		count++
	}

	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		_ = os.Remove(tmp.Name())
		return 0, errors.NewCacheError("failed to write CIDR cache", writeErr)
	}
	if count == 0 {
		// Nothing arrived; keep whatever cache already exists.
		_ = os.Remove(tmp.Name())
		return 0, nil
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, errors.NewCacheError("failed to replace CIDR cache", err)
	}
	return count, nil
}
