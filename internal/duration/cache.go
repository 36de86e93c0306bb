package duration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cache is the persistent project → minutes store behind duration
// resolution. It is a flat key→integer mapping serialized as JSON so a
// separate tool can overwrite entries by card id; entries never expire.
// A missing or corrupt file loads as an empty cache and is replaced on
// the next successful save.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]int
}

// LoadCache reads the cache file at path, tolerating absence and
// corruption. Non-positive and non-numeric values are skipped.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: map[string]int{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return c
	}
	for k, v := range raw {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		minutes := int(f)
		if minutes > 0 {
			c.entries[k] = minutes
		}
	}
	return c
}

// Get returns the cached minutes for key.
func (c *Cache) Get(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores minutes under key. Non-positive values are ignored:
// negative results are never cached so a later run can retry.
func (c *Cache) Set(key string, minutes int) {
	if key == "" || minutes <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = minutes
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Path returns the backing file path.
func (c *Cache) Path() string { return c.path }

// Save persists the cache atomically: write to a temp file in the same
// directory, then rename over the old file so a crash never leaves a
// partially written cache. A save failure is fatal for the run since
// losing fresh resolutions would force expensive re-fetching.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	data = append(data, '\n')
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache temp: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
