// Package snapshot keeps the last seen content of each file, compressed with
// zstd, so the scoring engine can diff against it.
package snapshot

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Stats describes cache occupancy.
type Stats struct {
	Entries         int `json:"entries" yaml:"entries"`
	MaxEntries      int `json:"max_entries" yaml:"max_entries"`
	RawBytes        int `json:"raw_bytes" yaml:"raw_bytes"`
	CompressedBytes int `json:"compressed_bytes" yaml:"compressed_bytes"`
}

type entry struct {
	data   []byte
	rawLen int
}

// Cache maps a path to its compressed content. When full, the oldest
// inserted path is evicted.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]entry
	order   []string

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a cache holding at most max entries; max <= 0 means unbounded.
func New(max int) (*Cache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Cache{
		max:     max,
		entries: make(map[string]entry),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close releases the codec resources.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.encoder.Close()
	c.decoder.Close()
}

// Put stores content for path, replacing any previous entry.
func (c *Cache) Put(path string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[path]; ok {
		c.removeOrder(path)
	}
	c.entries[path] = entry{
		data:   c.encoder.EncodeAll(content, nil),
		rawLen: len(content),
	}
	c.order = append(c.order, path)

	for c.max > 0 && len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Get returns the content for path. ok is false when nothing is cached or
// the entry cannot be decoded.
func (c *Cache) Get(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if e.rawLen == 0 {
		return []byte{}, true
	}
	out, err := c.decoder.DecodeAll(e.data, make([]byte, 0, e.rawLen))
	if err != nil {
		return nil, false
	}
	return out, true
}

// Delete drops path.
func (c *Cache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; ok {
		delete(c.entries, path)
		c.removeOrder(path)
	}
}

// Rename moves the entry for from to to. A missing source is a no-op.
func (c *Cache) Rename(from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[from]
	if !ok {
		return
	}
	delete(c.entries, from)
	c.removeOrder(from)
	if _, exists := c.entries[to]; exists {
		c.removeOrder(to)
	}
	c.entries[to] = e
	c.order = append(c.order, to)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = nil
}

// Stats reports occupancy.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Entries: len(c.entries), MaxEntries: c.max}
	for _, e := range c.entries {
		s.RawBytes += e.rawLen
		s.CompressedBytes += len(e.data)
	}
	return s
}

func (c *Cache) removeOrder(path string) {
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
