package cache

import "sync"

// Cache 读穿缓存端口
// 不做定时失效, 由调用方在写入新数据后显式清除对应键
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// Memory 进程内缓存实现
type Memory struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewMemory 创建进程内缓存
func NewMemory() *Memory {
	return &Memory{items: make(map[string]any)}
}

// Get 读取缓存
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// Set 写入缓存
func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// Delete 删除缓存
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}
