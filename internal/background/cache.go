package background

import (
	"path/filepath"
	"sync"
)

// Cache is a concurrency-safe panorama cache shared by the scenes of a batch.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*cacheEntry
	maxWidth int
	filter   Filter
}

type cacheEntry struct {
	img *Image
	err error
}

// NewCache creates a cache that loads images with the given size cap and
// filter.
func NewCache(maxWidth int, filter Filter) *Cache {
	return &Cache{
		items:    make(map[string]*cacheEntry),
		maxWidth: maxWidth,
		filter:   filter,
	}
}

// Get loads and caches a panorama. Load failures are cached too, so a
// missing file is reported once per path.
func (c *Cache) Get(path string) (*Image, error) {
	key := filepath.Clean(path)

	c.mu.RLock()
	if e, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return e.img, e.err
	}
	c.mu.RUnlock()

	img, err := Load(key, c.maxWidth)
	if img != nil {
		img.Filter = c.filter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		return e.img, e.err
	}
	c.items[key] = &cacheEntry{img: img, err: err}
	return img, err
}

// Sampler returns the background for a scene: its panorama when path is
// set, otherwise the flat sky.
func (c *Cache) Sampler(path string, sky Sky) (Sampler, error) {
	if path == "" {
		return sky, nil
	}
	img, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
