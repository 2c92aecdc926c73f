package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"docgen/internal/domain"
	"docgen/internal/port"
)

// ResponseCache is an in-memory LRU of model responses with a TTL.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	response  domain.RawResponse
	timestamp time.Time
}

func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Key identifies a request to a given backend.
func Key(backend string, req domain.GenerationRequest) string {
	h := sha256.New()
	for _, part := range []string{
		backend,
		req.Language,
		strconv.FormatBool(req.Inline),
		req.Hint,
		req.Delimiters.Start,
		req.Delimiters.End,
		req.Code,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *ResponseCache) Get(key string) (domain.RawResponse, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return domain.RawResponse{}, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return domain.RawResponse{}, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.response, true
}

func (c *ResponseCache) Put(key string, resp domain.RawResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{response: resp, timestamp: time.Now()}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{response: resp, timestamp: time.Now()}
	c.order = append(c.order, key)
}

func (c *ResponseCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *ResponseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ResponseCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ResponseCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ResponseCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedBackend answers repeated requests from memory, then from the
// persistent store, and only then calls the wrapped backend.
type CachedBackend struct {
	backend port.Backend
	cache   *ResponseCache
	store   port.ResponseStore
	logger  *zap.Logger
}

// NewCachedBackend wraps backend. store may be nil.
func NewCachedBackend(backend port.Backend, cache *ResponseCache, store port.ResponseStore, logger *zap.Logger) *CachedBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedBackend{
		backend: backend,
		cache:   cache,
		store:   store,
		logger:  logger,
	}
}

func (b *CachedBackend) Name() string {
	return b.backend.Name()
}

func (b *CachedBackend) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawResponse, error) {
	key := Key(b.backend.Name(), req)

	if resp, hit := b.cache.Get(key); hit {
		b.logger.Debug("response cache hit", zap.String("layer", "memory"))
		return resp, nil
	}

	if b.store != nil {
		cached, found, err := b.store.GetResponse(key)
		if err != nil {
			b.logger.Warn("response store lookup failed", zap.Error(err))
		} else if found {
			b.logger.Debug("response cache hit", zap.String("layer", "store"))
			resp := cached.ToRaw()
			b.cache.Put(key, resp)
			return resp, nil
		}
	}

	resp, err := b.backend.Invoke(ctx, req)
	if err != nil {
		return domain.RawResponse{}, err
	}

	b.cache.Put(key, resp)
	if b.store != nil {
		cached := domain.CachedResponse{
			Form:      resp.Form,
			Text:      resp.Text,
			Fragments: resp.Fragments,
			Model:     b.backend.Name(),
			CreatedAt: time.Now(),
		}
		if err := b.store.PutResponse(key, cached); err != nil {
			b.logger.Warn("response store write failed", zap.Error(err))
		}
	}

	return resp, nil
}
