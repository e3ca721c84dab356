// Package stats provides the statistics capability consumed by the
// pagination planner: cardinality estimates by vertex class, distinct
// value counts, and value quantiles for individual properties.
//
// Absence of data is always representable and distinguishable from zero:
// every lookup returns an ok flag. Providers are read-only from the
// planner's point of view; the planner never mutates caller-owned state.
package stats

// FieldKey identifies one property of one vertex class.
type FieldKey struct {
	// Vertex is the vertex class name.
	Vertex string
	// Field is the property field name.
	Field string
}

// Provider supplies statistical information about the data behind a
// schema. Implementations must be safe for concurrent readers if the
// binding they back is shared across goroutines.
type Provider interface {
	// VertexCount returns the estimated number of rows in the extent of a
	// vertex class. ok is false when the count is unknown.
	VertexCount(vertex string) (count int64, ok bool)

	// DistinctFieldValues returns the estimated number of distinct values
	// of a property. ok is false when unknown.
	DistinctFieldValues(vertex, field string) (count int64, ok bool)

	// FieldQuantiles returns evenly spaced quantiles of a property's value
	// distribution, smallest first. N quantiles split the domain into N-1
	// equal-cardinality intervals. ok is false when no quantile data
	// exists for the property.
	FieldQuantiles(vertex, field string) (quantiles []int64, ok bool)
}

// Local is an in-memory Provider backed by maps supplied at construction.
// It copies its inputs and is immutable afterwards, so it is safe for
// concurrent use.
type Local struct {
	vertexCounts map[string]int64
	distinct     map[FieldKey]int64
	quantiles    map[FieldKey][]int64
}

// LocalOption configures a Local provider.
type LocalOption func(*Local)

// WithDistinctFieldValues supplies distinct-value counts per property.
func WithDistinctFieldValues(counts map[FieldKey]int64) LocalOption {
	return func(l *Local) {
		for k, v := range counts {
			l.distinct[k] = v
		}
	}
}

// WithFieldQuantiles supplies value quantiles per property.
func WithFieldQuantiles(quantiles map[FieldKey][]int64) LocalOption {
	return func(l *Local) {
		for k, v := range quantiles {
			qs := make([]int64, len(v))
			copy(qs, v)
			l.quantiles[k] = qs
		}
	}
}

// NewLocal builds a Local provider from vertex counts and options.
func NewLocal(vertexCounts map[string]int64, opts ...LocalOption) *Local {
	l := &Local{
		vertexCounts: make(map[string]int64, len(vertexCounts)),
		distinct:     make(map[FieldKey]int64),
		quantiles:    make(map[FieldKey][]int64),
	}
	for k, v := range vertexCounts {
		l.vertexCounts[k] = v
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// VertexCount implements Provider.
func (l *Local) VertexCount(vertex string) (int64, bool) {
	c, ok := l.vertexCounts[vertex]
	return c, ok
}

// DistinctFieldValues implements Provider.
func (l *Local) DistinctFieldValues(vertex, field string) (int64, bool) {
	c, ok := l.distinct[FieldKey{Vertex: vertex, Field: field}]
	return c, ok
}

// FieldQuantiles implements Provider.
func (l *Local) FieldQuantiles(vertex, field string) ([]int64, bool) {
	q, ok := l.quantiles[FieldKey{Vertex: vertex, Field: field}]
	return q, ok
}

var _ Provider = (*Local)(nil)
