package campus

import "sync"

// Cache owns a single lazily loaded dataset. Concurrent first callers wait on
// one load; a failed load is not cached so the next Get retries.
type Cache struct {
	mu     sync.Mutex
	load   func() (*Dataset, error)
	loaded *Dataset
}

// NewCache creates a cache backed by load.
func NewCache(load func() (*Dataset, error)) *Cache {
	return &Cache{load: load}
}

// NewFileCache creates a cache that reads the dataset from path.
func NewFileCache(path string) *Cache {
	return NewCache(func() (*Dataset, error) { return LoadFile(path) })
}

// Get returns the dataset, loading it on first use.
func (c *Cache) Get() (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded != nil {
		return c.loaded, nil
	}
	ds, err := c.load()
	if err != nil {
		return nil, err
	}
	c.loaded = ds
	return ds, nil
}
