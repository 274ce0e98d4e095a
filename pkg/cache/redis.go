// Package cache provides an optional Redis-backed result cache. Identical
// uploads with identical engine options skip segmentation and replay the
// stored processed blob reference.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry points at a previously processed result for a given upload.
type Entry struct {
	RecordID          string `json:"record_id"`
	ProcessedFilename string `json:"processed_filename"`
	ProcessedPath     string `json:"processed_path"`
}

// ResultCache caches processed results keyed by upload content and engine
// option fingerprint.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(addr, password string, dbNum int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       dbNum,
		}),
		ttl: ttl,
	}
}

func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ResultCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key from the raw upload bytes and the engine option
// fingerprint, so a threshold change never serves stale masks.
func Key(data []byte, fingerprint string) string {
	sum := sha256.Sum256(data)
	return "bgremove:" + hex.EncodeToString(sum[:]) + ":" + fingerprint
}

// Get returns the cached entry or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
