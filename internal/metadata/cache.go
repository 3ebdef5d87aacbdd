package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

// DefaultTTL is how long a cached probe result stays fresh
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	info      *model.VideoInfo
	fetchedAt time.Time
}

// Cache wraps a Prober with a TTL keyed by URL. Failures are never cached so
// the caller may retry on the next pass.
type Cache struct {
	prober Prober
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates a metadata cache around the given prober
func NewCache(prober Prober) *Cache {
	return &Cache{
		prober:  prober,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// SetTTL overrides the entry time-to-live
func (c *Cache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Lookup returns metadata for the URL, serving a stored copy while it is
// fresh. A stale or missing entry triggers a synchronous probe; the result is
// stored with the current timestamp. Callers always receive their own copy.
func (c *Cache) Lookup(ctx context.Context, url string) (*model.VideoInfo, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[url]
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		info := cloneInfo(entry.info)
		c.mu.Unlock()
		return info, true, nil
	}
	if ok {
		// Expired, drop before refetching
		delete(c.entries, url)
	}
	c.mu.Unlock()

	info, err := c.prober.Probe(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrResolution, url, err)
	}

	c.mu.Lock()
	c.entries[url] = cacheEntry{info: cloneInfo(info), fetchedAt: c.now()}
	c.mu.Unlock()

	return info, false, nil
}

// Sweep evicts every expired entry and returns the number removed
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.now().Sub(entry.fetchedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cloneInfo(info *model.VideoInfo) *model.VideoInfo {
	if info == nil {
		return nil
	}
	out := *info
	out.Formats = append([]model.StreamFormat(nil), info.Formats...)
	out.Entries = append([]model.PlaylistEntry(nil), info.Entries...)
	return &out
}
