package llm

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedResponse struct {
	text     string
	endpoint string
}

// responseCache is an exact-match prompt cache with FIFO eviction: lookups use Peek so
// reads never refresh an entry, and entries are only inserted when absent.
type responseCache struct {
	entries *lru.Cache[string, cachedResponse]
}

// newResponseCache returns nil (caching disabled) for size <= 0.
func newResponseCache(size int) *responseCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[string, cachedResponse](size)
	if err != nil {
		return nil
	}
	return &responseCache{entries: c}
}

func cacheKey(prompt string, maxTokens int) string {
	sum := md5.Sum([]byte(prompt + "_" + strconv.Itoa(maxTokens)))
	return hex.EncodeToString(sum[:])
}

func (c *responseCache) get(key string) (cachedResponse, bool) {
	if c == nil {
		return cachedResponse{}, false
	}
	return c.entries.Peek(key)
}

func (c *responseCache) add(key string, v cachedResponse) {
	if c == nil {
		return
	}
	c.entries.ContainsOrAdd(key, v)
}

func (c *responseCache) size() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
