package client

import (
	"context"
	"time"

	"github.com/hawkkey/hawkkey-go/domain/key"
	"github.com/hawkkey/hawkkey-go/pkg/ttlcache"
)

const directoryCacheKey = "keys"

// KeyDirectory caches ListKeys results for read-heavy callers such as
// the CLI. Key records carry no secrets, which makes them an acceptable
// cache payload; verification results must never be cached this way.
type KeyDirectory struct {
	client *Client
	cache  *ttlcache.Cache[string, []key.Key]
}

// NewKeyDirectory creates a directory whose entries live for ttl
// (ttlcache.DefaultTTL when zero).
func NewKeyDirectory(c *Client, ttl time.Duration) *KeyDirectory {
	return &KeyDirectory{
		client: c,
		cache:  ttlcache.New[string, []key.Key](ttlcache.Options{DefaultTTL: ttl}),
	}
}

// List returns the cached key records, fetching from the service on a
// miss or after expiry.
func (d *KeyDirectory) List(ctx context.Context) ([]key.Key, error) {
	if keys, ok := d.cache.Get(directoryCacheKey); ok {
		return keys, nil
	}

	keys, err := d.client.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	d.cache.Set(directoryCacheKey, keys)
	return keys, nil
}

// Invalidate drops the cached listing; the next List refetches. Call it
// after creating, revoking, or rotating a key.
func (d *KeyDirectory) Invalidate() {
	d.cache.Delete(directoryCacheKey)
}

// Close tears down the directory's cache and its background sweep.
func (d *KeyDirectory) Close() {
	d.cache.Destroy()
}
