// Package session 每个登录会话独立的表格缓存，会话之间互不共享
package session

import (
	"sync"

	"squashclub/internal/model"
)

// Cache 会话内各集合表格的权威副本。Get/Set 都做深拷贝，调用方改动不会绕过 Set
type Cache struct {
	mu     sync.RWMutex
	tables map[string]*model.Table
	// dirty 本地已修改但尚未同步到远端的集合
	dirty map[string]bool
}

func NewCache() *Cache {
	return &Cache{tables: make(map[string]*model.Table), dirty: make(map[string]bool)}
}

// Get 读取集合表格副本，未缓存时 ok 为 false
func (c *Cache) Get(collection string) (*model.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[collection]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Set 写入集合表格
func (c *Cache) Set(collection string, t *model.Table) {
	c.mu.Lock()
	c.tables[collection] = t.Clone()
	c.mu.Unlock()
}

// MarkDirty 标记集合有未同步的本地修改
func (c *Cache) MarkDirty(collection string) {
	c.mu.Lock()
	c.dirty[collection] = true
	c.mu.Unlock()
}

// ClearDirty 同步成功或被远端数据覆盖后清除标记
func (c *Cache) ClearDirty(collection string) {
	c.mu.Lock()
	delete(c.dirty, collection)
	c.mu.Unlock()
}

// Dirty 集合是否有未同步的本地修改
func (c *Cache) Dirty(collection string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty[collection]
}

// Collections 已缓存的集合
func (c *Cache) Collections() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tables))
	for name := range c.tables {
		out = append(out, name)
	}
	return out
}
