// Package cache 提供进程内的 TTL 记忆化存储：按固定时间窗缓存派生结果。
//
// 惰性淘汰：没有后台清理协程，过期条目在读取时剔除。
// 单进程局部缓存；多进程部署时各持独立缓存，不做跨进程失效。
package cache

import (
	"sync"
	"time"
)

// DefaultTTL 是缓存条目的默认存活窗口。
const DefaultTTL = 300 * time.Second

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// TTL 是泛型 key→value 缓存，读写并发安全。
//
// 不变式：Get 仅在 now - insertedAt < ttl 时返回值；
// 否则视为缺失并顺带剔除该过期条目。Set 无条件覆盖并重置时间戳。
type TTL[V any] struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]entry[V]

	// now 可注入，测试里用来拨动时钟
	now func() time.Time
}

// NewTTL 创建 TTL 缓存；ttl 非正时使用 DefaultTTL。
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[V]{
		ttl:  ttl,
		data: make(map[string]entry[V]),
		now:  time.Now,
	}
}

// Get 返回 key 对应的值；缺失或过期时返回 (zero, false)，过期条目被剔除。
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.mu.Lock()
		// 双检：并发 Set 可能已写入新条目
		if cur, still := c.data[key]; still && cur.insertedAt.Equal(e.insertedAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set 无条件写入并盖上当前时间戳。
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.data[key] = entry[V]{value: value, insertedAt: c.now()}
	c.mu.Unlock()
}

// Delete 删除单个条目；key 不存在时为 no-op，不是错误。
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Clear 清空全部条目。
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.data = make(map[string]entry[V])
	c.mu.Unlock()
}

// Keys 返回当前未过期条目的 key 列表（实时视图，不触发剔除）。
func (c *TTL[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	keys := make([]string, 0, len(c.data))
	for key, e := range c.data {
		if now.Sub(e.insertedAt) < c.ttl {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len 返回未过期条目数。
func (c *TTL[V]) Len() int {
	return len(c.Keys())
}

// SetClock 注入时钟源，仅供测试使用。
func (c *TTL[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
