package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/utils/cache"
)

// JSONStore is the subset of utils/cache.RedisCache used for results
type JSONStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// ResultCache memoises /extract results keyed by upload digest and options.
// A nil *ResultCache is valid and never hits.
type ResultCache struct {
	store JSONStore
	ttl   time.Duration
}

// NewResultCache returns nil when store is nil or ttl disables caching
func NewResultCache(store JSONStore, ttl time.Duration) *ResultCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &ResultCache{store: store, ttl: ttl}
}

// ResultKey derives a cache key from the upload bytes and every option that
// influences the result
func ResultKey(content []byte, engine Engine, pages, strategy string, headerKeywords []string) string {
	h := sha256.New()
	h.Write(content)
	for _, part := range []string{
		string(engine),
		strings.ToLower(strings.TrimSpace(pages)),
		strategy,
		strings.Join(normalizeKeywords(headerKeywords), ","),
	} {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return "extract:" + hex.EncodeToString(h.Sum(nil))
}

// cacheEntry keeps the processed page list next to the result, since
// ExtractResult does not serialize it
type cacheEntry struct {
	Result *ExtractResult `json:"result"`
	Pages  []int          `json:"pages"`
}

// Lookup returns a cached result. Store errors count as a miss.
func (c *ResultCache) Lookup(ctx context.Context, key string) (*ExtractResult, bool) {
	if c == nil {
		return nil, false
	}
	var entry cacheEntry
	if err := c.store.GetJSON(ctx, key, &entry); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.Warnf("Result cache: lookup failed: %v", err)
		}
		return nil, false
	}
	if entry.Result == nil {
		return nil, false
	}
	entry.Result.pages = entry.Pages
	return entry.Result, true
}

// Store saves result; failures are logged and otherwise ignored
func (c *ResultCache) Store(ctx context.Context, key string, result *ExtractResult) {
	if c == nil || result == nil {
		return
	}
	entry := cacheEntry{Result: result, Pages: result.pages}
	if err := c.store.SetJSON(ctx, key, entry, c.ttl); err != nil {
		log.Warnf("Result cache: store failed: %v", err)
	}
}
