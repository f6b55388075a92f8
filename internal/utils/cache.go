package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache 带过期时间的本地 LRU 缓存
type Cache[V any] struct {
	lruCache *lru.Cache[string, CacheItem[V]]
	now      func() time.Time
}

// NewCache 创建容量为 size 的缓存
func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, CacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lruCache: l, now: time.Now}, nil
}

// Set 设置缓存，TTL 为过期时间
func (c *Cache[V]) Set(key string, data V, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get 获取缓存，不存在或已过期时 ok 为 false
func (c *Cache[V]) Get(key string) (data V, ok bool) {
	val, found := c.lruCache.Get(key)
	if !found {
		return data, false
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return data, false
	}

	return val.Data, true
}

// Delete 删除指定缓存
func (c *Cache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}

// Len 当前条目数（包含尚未清理的过期条目）
func (c *Cache[V]) Len() int {
	return c.lruCache.Len()
}
