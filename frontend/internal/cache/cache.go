// Package cache holds rendered fragments in memcached so that replicas of
// the frontend share them.
package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/quillpress/quill/shared/logger"
)

// Memcache implements markdown.Cache on top of a memcached client.
type Memcache struct {
	client     *memcache.Client
	expiration int32 // seconds
}

func NewMemcache(addr string, ttl time.Duration) *Memcache {
	client := memcache.New(addr)
	client.Timeout = 200 * time.Millisecond
	return &Memcache{client: client, expiration: int32(ttl / time.Second)}
}

func (m *Memcache) Get(key string) ([]byte, bool) {
	item, err := m.client.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			logger.Log.Warn("memcache get", "key", key, "error", err)
		}
		return nil, false
	}
	return item.Value, true
}

func (m *Memcache) Set(key string, value []byte) {
	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: m.expiration,
	})
	if err != nil {
		logger.Log.Warn("memcache set", "key", key, "error", err)
	}
}

// Noop never stores anything. Used when no memcached address is configured.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) { return nil, false }

func (Noop) Set(string, []byte) {}
