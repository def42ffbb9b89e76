package resolve

// Cache memoizes string resolutions for the lifetime of one run.
// Nothing is persisted: every invocation starts empty.
type Cache struct {
	entries map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns a cached value. A cached empty string is a remembered miss and
// still reports ok.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Set stores a value.
func (c *Cache) Set(key, value string) {
	c.entries[key] = value
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.entries = make(map[string]string)
}

// Caches groups the memo tables owned by a Resolver.
type Caches struct {
	// NearestTag maps a platform major to its most recent idea/<major>.* tag,
	// or "" when the major has none.
	NearestTag *Cache

	// DevBuild maps "tag@kotlinVersion" to the reconciled dev build.
	DevBuild *Cache
}

// NewCaches returns empty caches.
func NewCaches() *Caches {
	return &Caches{
		NearestTag: NewCache(),
		DevBuild:   NewCache(),
	}
}

func devBuildKey(tag, version string) string {
	return tag + "@" + version
}
