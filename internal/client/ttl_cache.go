package client

import (
	"sync"
	"time"
)

// Clock は現在時刻を返します。テストでは固定時刻を注入します。
type Clock interface {
	Now() time.Time
}

// SystemClock は time.Now を返すClockです。
type SystemClock struct{}

// Now は現在時刻を返します。
func (SystemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache はリクエストキーごとの短命なメモ化キャッシュです。
// 期限切れのエントリは削除せず無視し、次の Set で上書きします。
type TTLCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry[V]
}

// NewTTLCache は ttl と clock でTTLCacheを生成します。clock が nil なら SystemClock を使います。
func NewTTLCache[V any](ttl time.Duration, clock Clock) *TTLCache[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTLCache[V]{ttl: ttl, clock: clock, entries: make(map[string]entry[V])}
}

// Get は期限内のエントリを返します。
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.clock.Now().Sub(e.storedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set はエントリを現在時刻で保存します。
func (c *TTLCache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, storedAt: c.clock.Now()}
}

// Len は期限切れを含む保持エントリ数を返します。
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
