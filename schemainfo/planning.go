package schemainfo

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/quarry/schemagraph"
	"github.com/syssam/quarry/stats"
)

// EdgeConstraint is a cardinality integrity constraint on a directed edge.
type EdgeConstraint uint8

// The closed vocabulary of edge constraints. Constraints combine into
// sets: exactly-one-source is AtLeastOneSource together with
// AtMostOneSource.
const (
	// AtLeastOneSource means every destination has at least one source.
	AtLeastOneSource EdgeConstraint = 1 << iota
	// AtMostOneSource means every destination has at most one source.
	AtMostOneSource
	// AtLeastOneDestination means every source has at least one destination.
	AtLeastOneDestination
	// AtMostOneDestination means every source has at most one destination.
	AtMostOneDestination
)

// String returns the constraint name.
func (c EdgeConstraint) String() string {
	switch c {
	case AtLeastOneSource:
		return "AtLeastOneSource"
	case AtMostOneSource:
		return "AtMostOneSource"
	case AtLeastOneDestination:
		return "AtLeastOneDestination"
	case AtMostOneDestination:
		return "AtMostOneDestination"
	}
	return "EdgeConstraint(invalid)"
}

// EdgeConstraintSet is a set of edge constraints.
type EdgeConstraintSet uint8

// NewEdgeConstraintSet builds a set from the given constraints.
func NewEdgeConstraintSet(constraints ...EdgeConstraint) EdgeConstraintSet {
	var s EdgeConstraintSet
	for _, c := range constraints {
		s |= EdgeConstraintSet(c)
	}
	return s
}

// Has reports whether the set contains the constraint.
func (s EdgeConstraintSet) Has(c EdgeConstraint) bool {
	return s&EdgeConstraintSet(c) != 0
}

// String returns the constraint names joined with "|".
func (s EdgeConstraintSet) String() string {
	var names []string
	for _, c := range []EdgeConstraint{AtLeastOneSource, AtMostOneSource, AtLeastOneDestination, AtMostOneDestination} {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	if len(names) == 0 {
		return "EdgeConstraintSet()"
	}
	return strings.Join(names, "|")
}

// QueryPlanningConfig holds the inputs for building a
// QueryPlanningSchemaInfo.
type QueryPlanningConfig struct {
	// Schema is the schema used for querying.
	Schema *ast.Schema

	// TypeEquivalenceHints is the optional type-to-union equivalence
	// declaration; see TypeEquivalenceHints.
	TypeEquivalenceHints TypeEquivalenceHints

	// Graph is the graph view of Schema, carrying vertex, edge, and
	// subclass-set information. Built from Schema when nil.
	Graph *schemagraph.Graph

	// Statistics provides cardinality estimates for the schema's data.
	Statistics stats.Provider

	// PaginationKeys maps a vertex class to the property used to split its
	// extent during pagination. The property should be non-null and unique
	// per row; the primary key is usually a good choice. A vertex absent
	// from the map is not eligible for pagination.
	PaginationKeys map[string]string

	// UUID4Fields maps a vertex class to the set of its properties known
	// to hold uniformly distributed UUID values. Split boundaries for such
	// properties are interpolated without probing the database.
	UUID4Fields map[string]map[string]bool

	// EdgeConstraints maps an edge class to the constraints inferred for
	// it.
	EdgeConstraints map[string]EdgeConstraintSet
}

// QueryPlanningSchemaInfo is the binding consumed by the pagination
// planner: the schema graph, statistics, pagination keys, uniform-UUID
// field sets, and inferred edge constraints. Immutable after construction.
type QueryPlanningSchemaInfo struct {
	generic         *GenericSchemaInfo
	graph           *schemagraph.Graph
	statistics      stats.Provider
	paginationKeys  map[string]string
	uuid4Fields     map[string]map[string]bool
	edgeConstraints map[string]EdgeConstraintSet
}

// NewQueryPlanningSchemaInfo assembles a planning binding. Every key of
// PaginationKeys and UUID4Fields must name a vertex class of the graph and
// every key of EdgeConstraints an edge class; violations fail with
// *UnknownVertexError or *UnknownEdgeError. Beyond those name checks this
// is pure aggregation: the maps are taken by shared reference.
func NewQueryPlanningSchemaInfo(cfg QueryPlanningConfig) (*QueryPlanningSchemaInfo, error) {
	generic, err := NewGenericSchemaInfo(cfg.Schema, cfg.TypeEquivalenceHints)
	if err != nil {
		return nil, err
	}
	graph := cfg.Graph
	if graph == nil {
		graph = schemagraph.New(cfg.Schema)
	}
	for _, vertex := range sortedKeys(cfg.PaginationKeys) {
		if !graph.IsVertex(vertex) {
			return nil, &UnknownVertexError{Name: vertex}
		}
	}
	for _, vertex := range sortedKeys(cfg.UUID4Fields) {
		if !graph.IsVertex(vertex) {
			return nil, &UnknownVertexError{Name: vertex}
		}
	}
	for _, edge := range sortedKeys(cfg.EdgeConstraints) {
		if !graph.IsEdge(edge) {
			return nil, &UnknownEdgeError{Name: edge}
		}
	}
	return &QueryPlanningSchemaInfo{
		generic:         generic,
		graph:           graph,
		statistics:      cfg.Statistics,
		paginationKeys:  cfg.PaginationKeys,
		uuid4Fields:     cfg.UUID4Fields,
		edgeConstraints: cfg.EdgeConstraints,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Schema returns the bound schema.
func (i *QueryPlanningSchemaInfo) Schema() *ast.Schema { return i.generic.Schema() }

// TypeEquivalenceHints returns the declared hints, or nil.
func (i *QueryPlanningSchemaInfo) TypeEquivalenceHints() TypeEquivalenceHints {
	return i.generic.TypeEquivalenceHints()
}

// Graph returns the graph view of the schema.
func (i *QueryPlanningSchemaInfo) Graph() *schemagraph.Graph { return i.graph }

// Statistics returns the statistics capability.
func (i *QueryPlanningSchemaInfo) Statistics() stats.Provider { return i.statistics }

// PaginationKey returns the pagination key of a vertex class. The second
// return value is false if the vertex is not eligible for pagination.
func (i *QueryPlanningSchemaInfo) PaginationKey(vertex string) (string, bool) {
	key, ok := i.paginationKeys[vertex]
	return key, ok
}

// IsUUID4Field reports whether the property of the vertex class is known
// to hold uniformly distributed UUID values.
func (i *QueryPlanningSchemaInfo) IsUUID4Field(vertex, field string) bool {
	return i.uuid4Fields[vertex][field]
}

// EdgeConstraints returns the constraints inferred for an edge class.
func (i *QueryPlanningSchemaInfo) EdgeConstraints(edge string) (EdgeConstraintSet, bool) {
	s, ok := i.edgeConstraints[edge]
	return s, ok
}
