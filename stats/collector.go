package stats

import (
	"sync"
)

// Collector accumulates observed row counts while a caller scans or loads
// data, and can be frozen into a Local provider once collection finishes.
// All methods are safe for concurrent use.
type Collector struct {
	mu       sync.RWMutex
	vertices map[string]int64
	distinct map[FieldKey]int64
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		vertices: make(map[string]int64),
		distinct: make(map[FieldKey]int64),
	}
}

// AddVertexCount adds n observed rows to the extent of a vertex class.
func (c *Collector) AddVertexCount(vertex string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vertices[vertex] += n
}

// SetDistinctFieldValues records the observed number of distinct values of
// a property, replacing any previous observation.
func (c *Collector) SetDistinctFieldValues(vertex, field string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distinct[FieldKey{Vertex: vertex, Field: field}] = n
}

// VertexCount returns the count accumulated so far for a vertex class.
func (c *Collector) VertexCount(vertex string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.vertices[vertex]
	return n, ok
}

// Reset discards all accumulated observations.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vertices = make(map[string]int64)
	c.distinct = make(map[FieldKey]int64)
}

// Local freezes the current observations into an immutable Local
// provider. Further mutation of the Collector does not affect the result.
func (c *Collector) Local() *Local {
	c.mu.RLock()
	defer c.mu.RUnlock()
	distinct := make(map[FieldKey]int64, len(c.distinct))
	for k, v := range c.distinct {
		distinct[k] = v
	}
	return NewLocal(c.vertices, WithDistinctFieldValues(distinct))
}
