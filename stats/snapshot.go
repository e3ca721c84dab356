package stats

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the serializable form of a Local provider. Field-level data
// is nested vertex -> field for a compact wire form.
type Snapshot struct {
	VertexCounts        map[string]int64              `msgpack:"vertex_counts"`
	DistinctFieldValues map[string]map[string]int64   `msgpack:"distinct_field_values,omitempty"`
	FieldQuantiles      map[string]map[string][]int64 `msgpack:"field_quantiles,omitempty"`
}

// Snapshot returns a serializable copy of the provider's data.
func (l *Local) Snapshot() *Snapshot {
	s := &Snapshot{
		VertexCounts:        make(map[string]int64, len(l.vertexCounts)),
		DistinctFieldValues: make(map[string]map[string]int64),
		FieldQuantiles:      make(map[string]map[string][]int64),
	}
	for k, v := range l.vertexCounts {
		s.VertexCounts[k] = v
	}
	for k, v := range l.distinct {
		if s.DistinctFieldValues[k.Vertex] == nil {
			s.DistinctFieldValues[k.Vertex] = make(map[string]int64)
		}
		s.DistinctFieldValues[k.Vertex][k.Field] = v
	}
	for k, v := range l.quantiles {
		if s.FieldQuantiles[k.Vertex] == nil {
			s.FieldQuantiles[k.Vertex] = make(map[string][]int64)
		}
		qs := make([]int64, len(v))
		copy(qs, v)
		s.FieldQuantiles[k.Vertex][k.Field] = qs
	}
	return s
}

// Local rebuilds a provider from the snapshot.
func (s *Snapshot) Local() *Local {
	distinct := make(map[FieldKey]int64)
	for vertex, fields := range s.DistinctFieldValues {
		for field, n := range fields {
			distinct[FieldKey{Vertex: vertex, Field: field}] = n
		}
	}
	quantiles := make(map[FieldKey][]int64)
	for vertex, fields := range s.FieldQuantiles {
		for field, qs := range fields {
			quantiles[FieldKey{Vertex: vertex, Field: field}] = qs
		}
	}
	return NewLocal(s.VertexCounts,
		WithDistinctFieldValues(distinct),
		WithFieldQuantiles(quantiles),
	)
}

// WriteSnapshot serializes the provider's data to w in msgpack form.
func WriteSnapshot(w io.Writer, l *Local) error {
	if err := msgpack.NewEncoder(w).Encode(l.Snapshot()); err != nil {
		return fmt.Errorf("stats: encoding snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot deserializes a provider previously written with
// WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Local, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("stats: decoding snapshot: %w", err)
	}
	return s.Local(), nil
}
