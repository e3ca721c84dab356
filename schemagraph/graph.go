// Package schemagraph provides a read-only graph view over a GraphQL
// schema: vertex and edge enumeration, per-vertex field lists, subclass
// sets, and the vertex-field naming convention shared by all backends.
//
// A Graph is built once per schema and borrowed by every schema binding;
// nothing in this module mutates it after construction.
package schemagraph

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// CountFieldName is the reserved builtin property available on every
// vertex. It has no backing column on relational backends.
const CountFieldName = "_x_count"

// RootTypeName is the name of the synthetic root query type. The root type
// is not a vertex and carries no backend resources.
const RootTypeName = "RootSchemaQuery"

// Vertex-field name prefixes. A field whose name carries one of these
// prefixes denotes a directed edge rather than a property.
const (
	outboundPrefix = "out_"
	inboundPrefix  = "in_"
)

// IsVertexFieldName reports whether the field name denotes an edge
// traversal under the naming convention.
func IsVertexFieldName(name string) bool {
	return strings.HasPrefix(name, outboundPrefix) || strings.HasPrefix(name, inboundPrefix)
}

// EdgeNameFromVertexField returns the edge name encoded in a vertex field
// name, stripping the direction prefix. The second return value is false
// if the field name is not a vertex field.
func EdgeNameFromVertexField(field string) (string, bool) {
	switch {
	case strings.HasPrefix(field, outboundPrefix):
		return strings.TrimPrefix(field, outboundPrefix), true
	case strings.HasPrefix(field, inboundPrefix):
		return strings.TrimPrefix(field, inboundPrefix), true
	}
	return "", false
}

// IsBuiltinField reports whether the field name is a reserved builtin
// property that needs no backing column.
func IsBuiltinField(name string) bool {
	return name == CountFieldName
}

// Vertex is one vertex class in the graph: a GraphQL object or interface
// type that is not the root query type and not an introspection builtin.
type Vertex struct {
	// Name is the vertex class name.
	Name string

	def      *ast.Definition
	property []string
	vertex   []string
}

// Definition returns the underlying GraphQL type definition.
func (v *Vertex) Definition() *ast.Definition { return v.def }

// IsInterface reports whether the vertex is an interface type.
func (v *Vertex) IsInterface() bool { return v.def.Kind == ast.Interface }

// Field returns the definition of the named field, if declared.
func (v *Vertex) Field(name string) (*ast.FieldDefinition, bool) {
	f := v.def.Fields.ForName(name)
	if f == nil {
		return nil, false
	}
	return f, true
}

// PropertyFields returns the names of all property (non-edge) fields,
// sorted.
func (v *Vertex) PropertyFields() []string { return v.property }

// VertexFields returns the names of all edge-denoting fields, sorted.
func (v *Vertex) VertexFields() []string { return v.vertex }

// Edge is a directed edge class. Its endpoints are collected from the
// vertex fields that reference it: out_<name> on a vertex makes that
// vertex a source, in_<name> makes it a destination.
type Edge struct {
	// Name is the edge class name, without direction prefix.
	Name string
	// Sources are the vertex classes carrying an out_<Name> field, sorted.
	Sources []string
	// Destinations are the vertex classes carrying an in_<Name> field, sorted.
	Destinations []string
}

// Graph is the schema graph. Construct with New; safe for concurrent use.
type Graph struct {
	schema   *ast.Schema
	vertices map[string]*Vertex
	edges    map[string]*Edge
	names    []string
}

// New builds a Graph from a GraphQL schema. The schema is borrowed, not
// copied, and must not be mutated afterwards.
func New(schema *ast.Schema) *Graph {
	g := &Graph{
		schema:   schema,
		vertices: make(map[string]*Vertex),
		edges:    make(map[string]*Edge),
	}
	rootName := RootTypeName
	if schema.Query != nil {
		rootName = schema.Query.Name
	}
	for name, def := range schema.Types {
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		if name == rootName || strings.HasPrefix(name, "__") {
			continue
		}
		v := &Vertex{Name: name, def: def}
		for _, f := range def.Fields {
			if IsVertexFieldName(f.Name) {
				v.vertex = append(v.vertex, f.Name)
				g.recordEdge(name, f.Name)
			} else {
				v.property = append(v.property, f.Name)
			}
		}
		sort.Strings(v.property)
		sort.Strings(v.vertex)
		g.vertices[name] = v
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)
	for _, e := range g.edges {
		sort.Strings(e.Sources)
		sort.Strings(e.Destinations)
	}
	return g
}

func (g *Graph) recordEdge(vertex, field string) {
	name, ok := EdgeNameFromVertexField(field)
	if !ok {
		return
	}
	e := g.edges[name]
	if e == nil {
		e = &Edge{Name: name}
		g.edges[name] = e
	}
	if strings.HasPrefix(field, outboundPrefix) {
		e.Sources = append(e.Sources, vertex)
	} else {
		e.Destinations = append(e.Destinations, vertex)
	}
}

// Schema returns the underlying GraphQL schema.
func (g *Graph) Schema() *ast.Schema { return g.schema }

// Vertex returns the named vertex class, if present.
func (g *Graph) Vertex(name string) (*Vertex, bool) {
	v, ok := g.vertices[name]
	return v, ok
}

// IsVertex reports whether name is a vertex class in the graph.
func (g *Graph) IsVertex(name string) bool {
	_, ok := g.vertices[name]
	return ok
}

// VertexNames returns all vertex class names, sorted.
func (g *Graph) VertexNames() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Edge returns the named edge class, if present.
func (g *Graph) Edge(name string) (*Edge, bool) {
	e, ok := g.edges[name]
	return e, ok
}

// IsEdge reports whether name is an edge class in the graph.
func (g *Graph) IsEdge(name string) bool {
	_, ok := g.edges[name]
	return ok
}

// EdgeNames returns all edge class names, sorted.
func (g *Graph) EdgeNames() []string {
	out := make([]string, 0, len(g.edges))
	for name := range g.edges {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SubclassSet returns the names of all concrete types that are name or a
// subclass of name: for an interface, the objects implementing it; for an
// object, just itself. The result is sorted.
func (g *Graph) SubclassSet(name string) []string {
	v, ok := g.vertices[name]
	if !ok {
		return nil
	}
	if v.def.Kind == ast.Object {
		return []string{name}
	}
	var out []string
	for _, def := range g.schema.PossibleTypes[name] {
		if g.IsVertex(def.Name) {
			out = append(out, def.Name)
		}
	}
	sort.Strings(out)
	return out
}

// FieldTypeName returns the named type of a property field on a vertex,
// unwrapping list and non-null markers. The second return value is false
// if the vertex or field does not exist.
func (g *Graph) FieldTypeName(vertex, field string) (string, bool) {
	v, ok := g.vertices[vertex]
	if !ok {
		return "", false
	}
	f, ok := v.Field(field)
	if !ok {
		return "", false
	}
	return f.Type.Name(), true
}
