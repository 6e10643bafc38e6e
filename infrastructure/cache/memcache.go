package cache

import (
	"sync"
	"time"
)

// MemCache is a simple in-memory cache backed by sync.Map.
// Items can have optional TTL. A background cleanup goroutine
// runs when NewMemCache is given a positive cleanupInterval.
type MemCache[V any] struct {
	items sync.Map
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
	now   func() time.Time
}

type item[V any] struct {
	value      V
	expiration int64 // unix nano; 0 means no expiration
}

// NewMemCache creates a new MemCache. If cleanupInterval > 0,
// a background goroutine will periodically remove expired items.
func NewMemCache[V any](cleanupInterval time.Duration) *MemCache[V] {
	m := &MemCache[V]{
		stop: make(chan struct{}),
		now:  time.Now,
	}
	if cleanupInterval > 0 {
		m.wg.Add(1)
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			defer m.wg.Done()
			for {
				select {
				case <-ticker.C:
					m.cleanup()
				case <-m.stop:
					return
				}
			}
		}()
	}
	return m
}

func (m *MemCache[V]) Set(key string, value V, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = m.now().Add(ttl).UnixNano()
	}
	m.items.Store(key, &item[V]{
		value:      value,
		expiration: exp,
	})
}

func (m *MemCache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := m.items.Load(key)
	if !ok {
		return zero, false
	}
	it := v.(*item[V])
	if it.expired(m.now().UnixNano()) {
		m.items.CompareAndDelete(key, v)
		return zero, false
	}
	return it.value, true
}

// GetOrLoad returns the cached value for key or calls load and caches its
// result for ttl. Load errors are returned and nothing is cached.
func (m *MemCache[V]) GetOrLoad(key string, ttl time.Duration, load func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	m.Set(key, v, ttl)
	return v, nil
}

func (m *MemCache[V]) Delete(key string) {
	m.items.Delete(key)
}

func (m *MemCache[V]) Exists(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *MemCache[V]) Close() {
	m.once.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
}

func (m *MemCache[V]) Len() int {
	n := 0
	now := m.now().UnixNano()
	m.items.Range(func(_, v any) bool {
		if !v.(*item[V]).expired(now) {
			n++
		}
		return true
	})
	return n
}

func (it *item[V]) expired(now int64) bool {
	return it.expiration != 0 && now > it.expiration
}

func (m *MemCache[V]) cleanup() {
	now := m.now().UnixNano()
	m.items.Range(func(k, v any) bool {
		if v.(*item[V]).expired(now) {
			m.items.CompareAndDelete(k, v)
		}
		return true
	})
}
