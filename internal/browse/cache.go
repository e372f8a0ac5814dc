package browse

// Cache stores rendered card details keyed by list index.
// It is not safe for concurrent use; callers must confine access to a
// single goroutine (e.g., the Bubble Tea update loop).
type Cache struct {
	entries map[int]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[int]string)}
}

// Get returns the cached detail for the given index, or "" and false on miss.
func (c *Cache) Get(idx int) (string, bool) {
	d, ok := c.entries[idx]
	return d, ok
}

// Set stores a rendered detail, replacing any existing entry.
func (c *Cache) Set(idx int, detail string) {
	c.entries[idx] = detail
}

// Invalidate clears all cached entries.
func (c *Cache) Invalidate() {
	c.entries = make(map[int]string)
}
