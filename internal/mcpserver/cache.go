package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oasmend/checker"
	"github.com/erraggy/oasmend/oaserrors"
)

// verdict is the outcome of an engine check; a nil err means the document passed.
type verdict struct {
	err error
}

// cacheEntry holds a cached engine verdict with LRU ordering and TTL expiry.
type cacheEntry struct {
	verdict   verdict
	insertAt  time.Time
	expiresAt time.Time
}

// verdictCache is a session-scoped cache of engine verdicts keyed by engine
// settings and a SHA-256 hash of the document text. A background sweeper
// removes expired entries.
type verdictCache struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

func newVerdictCache(maxSize int) *verdictCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &verdictCache{entries: make(map[string]*cacheEntry), maxSize: maxSize}
}

// get returns a cached verdict. Expired entries are lazily removed.
func (c *verdictCache) get(key string) (verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return verdict{}, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return verdict{}, false
	}
	// Touch entry for LRU.
	e.insertAt = time.Now()
	return e.verdict, true
}

// put stores a verdict with a TTL, evicting the oldest entry if at capacity.
func (c *verdictCache) put(key string, v verdict, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{verdict: v, insertAt: now}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *verdictCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *verdictCache) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// size returns the number of cached entries.
func (c *verdictCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cachedEngine wraps a checker.Engine and memoizes its verdicts. Only passes
// and validation findings are cached; cancellations and engine faults are not.
type cachedEngine struct {
	inner  checker.Engine
	prefix string
	cache  *verdictCache
	ttl    time.Duration
}

var _ checker.Engine = (*cachedEngine)(nil)

func (e *cachedEngine) Name() string { return e.inner.Name() }

func (e *cachedEngine) Check(ctx context.Context, doc *checker.Document) error {
	key := e.key(doc.Content)
	if v, ok := e.cache.get(key); ok {
		return v.err
	}
	err := e.inner.Check(ctx, doc)
	if ctx.Err() == nil && (err == nil || errors.Is(err, oaserrors.ErrValidation)) {
		e.cache.put(key, verdict{err: err}, e.ttl)
	}
	return err
}

func (e *cachedEngine) key(content string) string {
	h := sha256.Sum256([]byte(content))
	return e.prefix + ":" + hex.EncodeToString(h[:])
}
