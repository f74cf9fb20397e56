package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"designify/internal/projecttree"
)

// CachedClient memoizes image descriptions by content digest. Repeated
// uploads of the same design (a common retry pattern from the plugin)
// skip the most expensive model call. Generation is not cached; the
// caller may want fresh output for the same description.
type CachedClient struct {
	inner        Client
	descriptions *lru.Cache[string, string]
}

func NewCachedClient(inner Client, size int) (*CachedClient, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &CachedClient{inner: inner, descriptions: cache}, nil
}

func (c *CachedClient) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	sum := sha256.Sum256(image)
	key := hex.EncodeToString(sum[:])
	if desc, ok := c.descriptions.Get(key); ok {
		return desc, nil
	}
	desc, err := c.inner.DescribeImage(ctx, image, mimeType)
	if err != nil {
		return "", err
	}
	c.descriptions.Add(key, desc)
	return desc, nil
}

func (c *CachedClient) GenerateProject(ctx context.Context, description string) (projecttree.Payload, error) {
	return c.inner.GenerateProject(ctx, description)
}
