package schema

import (
	"reflect"
	"sync"
)

// Cache 按类型缓存表结构，并发安全
//
// 同一类型只会构建一次，构建失败不缓存，下次 Get 会重新构建
type Cache struct {
	mapper *Mapper

	mu     sync.RWMutex
	tables map[reflect.Type]*Table
}

func NewCache(mapper *Mapper) *Cache {
	if mapper == nil {
		mapper = NewMapper(MapperOptions{})
	}
	return &Cache{
		mapper: mapper,
		tables: make(map[reflect.Type]*Table),
	}
}

// Mapper 返回构建表结构使用的 Mapper
func (c *Cache) Mapper() *Mapper {
	return c.mapper
}

// Get 返回类型对应的表结构，不存在时构建并缓存
func (c *Cache) Get(t reflect.Type) (*Table, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	c.mu.RLock()
	table, ok := c.tables[t]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 等锁期间可能已经被其他协程构建
	if table, ok := c.tables[t]; ok {
		return table, nil
	}

	table, err := c.mapper.Map(t)
	if err != nil {
		return nil, err
	}
	c.tables[t] = table
	return table, nil
}

// Len 已缓存的类型数量
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
