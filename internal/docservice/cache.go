package docservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedClient memoizes /process results by document content.
// Questions always reach the service.
type CachedClient struct {
	next  Service
	cache *cache.Cache
}

// NewCachedClient wraps a service. A non-positive ttl disables caching.
func NewCachedClient(next Service, ttl time.Duration) Service {
	if ttl <= 0 {
		return next
	}
	return &CachedClient{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Process returns a cached summary for identical content or calls the service
func (c *CachedClient) Process(ctx context.Context, doc *Document) (*Summary, error) {
	if doc == nil {
		return c.next.Process(ctx, doc)
	}

	key := contentKey(doc.Content)
	if cached, found := c.cache.Get(key); found {
		return cloneSummary(cached.(*Summary)), nil
	}

	result, err := c.next.Process(ctx, doc)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, cloneSummary(result))
	return result, nil
}

// Ask delegates to the wrapped service
func (c *CachedClient) Ask(ctx context.Context, doc *Document, question string) (*Answer, error) {
	return c.next.Ask(ctx, doc, question)
}

// size reports the number of cached summaries
func (c *CachedClient) size() int {
	return c.cache.ItemCount()
}

func contentKey(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func cloneSummary(s *Summary) *Summary {
	clone := *s
	clone.Questions = append([]string(nil), s.Questions...)
	return &clone
}
