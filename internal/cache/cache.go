// Package cache memoizes parsed uploads so that dashboard interactions do
// not re-read the CSV files.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/jengzang/epidash-backend-go/internal/dataset"
)

// Entry is a parsed pair of uploads
type Entry struct {
	ID         string
	Timeseries *dataset.TimeseriesTable
	Outbreak   *dataset.OutbreakTable
}

// Key derives the dataset ID from the raw bytes of both uploads
func Key(timeseries, outbreak []byte) string {
	h := sha256.New()
	h.Write(timeseries)
	h.Write([]byte{0})
	h.Write(outbreak)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// DatasetCache is a bounded map of parsed uploads. When full, the oldest
// inserted entry is evicted.
type DatasetCache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]*Entry
	order    []string // insertion order, oldest first
}

// New creates a cache holding at most capacity entries (minimum 1)
func New(capacity int) *DatasetCache {
	if capacity < 1 {
		capacity = 1
	}
	return &DatasetCache{
		capacity: capacity,
		entries:  make(map[string]*Entry),
	}
}

// Get returns a cached entry
func (c *DatasetCache) Get(id string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	return e, ok
}

// Put stores an entry and returns the IDs evicted to make room
func (c *DatasetCache) Put(e *Entry) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[e.ID]; exists {
		c.entries[e.ID] = e
		return nil
	}

	var evicted []string
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		evicted = append(evicted, oldest)
	}

	c.entries[e.ID] = e
	c.order = append(c.order, e.ID)
	return evicted
}

// Invalidate removes an entry. It reports whether the entry existed.
func (c *DatasetCache) Invalidate(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of cached entries
func (c *DatasetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
