// Package schemainfo binds an abstract graph schema to concrete backend
// resources and validates that a binding is complete before any query is
// compiled against it.
//
// A binding is built once per schema and backend, treated as immutable
// configuration for the lifetime of the process, and shared freely across
// goroutines. Graph backends (MATCH, Gremlin, Cypher) carry only the
// schema; relational backends additionally carry a dialect tag, a
// vertex-to-table mapping, and join descriptors for every vertex field.
package schemainfo

import (
	sqlschema "ariga.io/atlas/sql/schema"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/quarry/dialect"
)

// DirectJoinDescriptor describes the intent to join two tables using the
// specified columns. The resulting join expression could be something like:
//
//	JOIN origin_table.from_column = destination_table.to_column
//
// The type of join (inner vs left) is not specified, and neither are the
// tables: they are inferred from the owning type's table binding and the
// edge's destination type. One descriptor always describes exactly one
// directed edge; descriptors never compose.
type DirectJoinDescriptor struct {
	// FromColumn is the column in the source table to join on.
	FromColumn string
	// ToColumn is the column in the destination table to join on.
	ToColumn string
}

// JoinDescriptors maps a type name to the join descriptor of every vertex
// field declared on that type.
type JoinDescriptors map[string]map[string]DirectJoinDescriptor

// TypeEquivalenceHints declares that a type or interface (the key) is
// exactly covered by a union of concrete types (the value). It is a
// workaround for backends lacking inheritance across non-interface types.
// Hints are not recursively expanded: a hint's value may itself appear as
// a key elsewhere and is not transitively followed. Only type-level
// correctness is enforced; bad input here leads to incorrect output
// queries being generated.
type TypeEquivalenceHints map[string]string

// GenericSchemaInfo is the backend-agnostic part of every binding: the
// schema itself plus optional type-equivalence hints. It is shared by
// reference across backend-specific variants and never copied.
type GenericSchemaInfo struct {
	schema *ast.Schema
	hints  TypeEquivalenceHints
}

// NewGenericSchemaInfo builds the backend-agnostic part of a binding.
// hints may be nil. Each hint key must resolve to an object or interface
// type and each value to a union type; violations fail with a
// *TypeEquivalenceError.
func NewGenericSchemaInfo(schema *ast.Schema, hints TypeEquivalenceHints) (*GenericSchemaInfo, error) {
	if err := checkTypeEquivalenceHints(schema, hints); err != nil {
		return nil, err
	}
	return &GenericSchemaInfo{schema: schema, hints: hints}, nil
}

func checkTypeEquivalenceHints(schema *ast.Schema, hints TypeEquivalenceHints) error {
	for key, value := range hints {
		keyDef, ok := schema.Types[key]
		if !ok {
			return &TypeEquivalenceError{Key: key, Value: value, Reason: "key is not a schema type"}
		}
		if keyDef.Kind != ast.Object && keyDef.Kind != ast.Interface {
			return &TypeEquivalenceError{Key: key, Value: value, Reason: "key is not an object or interface type"}
		}
		valueDef, ok := schema.Types[value]
		if !ok {
			return &TypeEquivalenceError{Key: key, Value: value, Reason: "value is not a schema type"}
		}
		if valueDef.Kind != ast.Union {
			return &TypeEquivalenceError{Key: key, Value: value, Reason: "value is not a union type"}
		}
	}
	return nil
}

// Schema returns the bound schema.
func (i *GenericSchemaInfo) Schema() *ast.Schema { return i.schema }

// TypeEquivalenceHints returns the declared hints, or nil. The returned
// map is shared and must not be mutated.
func (i *GenericSchemaInfo) TypeEquivalenceHints() TypeEquivalenceHints { return i.hints }

// Backend identifies the backend family a binding targets.
type Backend string

// Supported backend families.
const (
	// Match is the OrientDB MATCH backend.
	Match Backend = "match"
	// Gremlin is the Gremlin traversal backend.
	Gremlin Backend = "gremlin"
	// Cypher is the openCypher backend.
	Cypher Backend = "cypher"
	// SQL covers all relational backends; the concrete flavor is carried
	// by the binding's dialect tag.
	SQL Backend = "sql"
)

// SchemaInfo is implemented by every backend-specific binding. The
// backend-agnostic accessors are defined once on GenericSchemaInfo and
// promoted by embedding.
type SchemaInfo interface {
	// Backend returns the backend family this binding targets.
	Backend() Backend
	// Schema returns the bound schema.
	Schema() *ast.Schema
	// TypeEquivalenceHints returns the declared hints, or nil.
	TypeEquivalenceHints() TypeEquivalenceHints
}

// Compiler is the consumer of a binding: it lowers a query against a
// schema info into a backend query string plus a parameter map. Backend
// compilers live outside this module; their errors are their own and are
// never conflated with binding errors.
type Compiler interface {
	Compile(info SchemaInfo, query *ast.QueryDocument, parameters map[string]any) (string, map[string]any, error)
}

// MatchSchemaInfo is the binding for databases queried with MATCH.
// Graph-query compilation needs no table or join metadata.
type MatchSchemaInfo struct {
	*GenericSchemaInfo
}

// Backend returns the backend family.
func (*MatchSchemaInfo) Backend() Backend { return Match }

// NewMatchSchemaInfo creates a binding for a database using MATCH.
func NewMatchSchemaInfo(schema *ast.Schema, hints TypeEquivalenceHints) (*MatchSchemaInfo, error) {
	generic, err := NewGenericSchemaInfo(schema, hints)
	if err != nil {
		return nil, err
	}
	return &MatchSchemaInfo{GenericSchemaInfo: generic}, nil
}

// GremlinSchemaInfo is the binding for databases queried with Gremlin.
type GremlinSchemaInfo struct {
	*GenericSchemaInfo
}

// Backend returns the backend family.
func (*GremlinSchemaInfo) Backend() Backend { return Gremlin }

// NewGremlinSchemaInfo creates a binding for a database using Gremlin.
func NewGremlinSchemaInfo(schema *ast.Schema, hints TypeEquivalenceHints) (*GremlinSchemaInfo, error) {
	generic, err := NewGenericSchemaInfo(schema, hints)
	if err != nil {
		return nil, err
	}
	return &GremlinSchemaInfo{GenericSchemaInfo: generic}, nil
}

// CypherSchemaInfo is the binding for databases queried with Cypher.
type CypherSchemaInfo struct {
	*GenericSchemaInfo
}

// Backend returns the backend family.
func (*CypherSchemaInfo) Backend() Backend { return Cypher }

// NewCypherSchemaInfo creates a binding for a database using Cypher.
func NewCypherSchemaInfo(schema *ast.Schema, hints TypeEquivalenceHints) (*CypherSchemaInfo, error) {
	generic, err := NewGenericSchemaInfo(schema, hints)
	if err != nil {
		return nil, err
	}
	return &CypherSchemaInfo{GenericSchemaInfo: generic}, nil
}

// SQLSchemaInfo is the binding for relational databases. On top of the
// generic info it carries the dialect being compiled for, a table for
// every object and interface type, and a join descriptor for every vertex
// field. Property fields map implicitly to same-named columns on the
// type's table.
//
// The table and join maps are taken by shared reference, not copied, and
// must not be mutated after construction.
type SQLSchemaInfo struct {
	*GenericSchemaInfo
	dialect dialect.Dialect
	tables  map[string]*sqlschema.Table
	joins   JoinDescriptors
}

// Backend returns the backend family.
func (*SQLSchemaInfo) Backend() Backend { return SQL }

// Dialect returns the SQL flavor this binding compiles for.
func (i *SQLSchemaInfo) Dialect() dialect.Dialect { return i.dialect }

// Table returns the table bound to the named type.
func (i *SQLSchemaInfo) Table(typeName string) (*sqlschema.Table, bool) {
	t, ok := i.tables[typeName]
	return t, ok
}

// Tables returns the full vertex-to-table mapping. The returned map is
// shared and must not be mutated.
func (i *SQLSchemaInfo) Tables() map[string]*sqlschema.Table { return i.tables }

// JoinDescriptor returns the join descriptor for a vertex field on a type.
func (i *SQLSchemaInfo) JoinDescriptor(typeName, field string) (DirectJoinDescriptor, bool) {
	d, ok := i.joins[typeName][field]
	return d, ok
}

// JoinDescriptors returns the full join mapping. The returned map is
// shared and must not be mutated.
func (i *SQLSchemaInfo) JoinDescriptors() JoinDescriptors { return i.joins }

// Option configures binding construction.
type Option func(*options)

type options struct {
	skipValidation bool
}

// WithoutValidation skips the structural validation pass during
// construction, trading safety for speed. Use only when the inputs are
// already known valid, for example when re-binding a schema that passed
// validation in a prior run.
func WithoutValidation() Option {
	return func(o *options) { o.skipValidation = true }
}

// NewSQLSchemaInfo creates a binding for a relational database. hints may
// be nil. Unless WithoutValidation is given, the binding is validated for
// structural completeness and construction fails with the first violation
// found.
func NewSQLSchemaInfo(
	d dialect.Dialect,
	schema *ast.Schema,
	tables map[string]*sqlschema.Table,
	joins JoinDescriptors,
	hints TypeEquivalenceHints,
	opts ...Option,
) (*SQLSchemaInfo, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	generic, err := NewGenericSchemaInfo(schema, hints)
	if err != nil {
		return nil, err
	}
	info := &SQLSchemaInfo{
		GenericSchemaInfo: generic,
		dialect:           d,
		tables:            tables,
		joins:             joins,
	}
	if !o.skipValidation {
		if err := validateBinding(info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// NewPostgresSchemaInfo creates a binding for a PostgreSQL database.
func NewPostgresSchemaInfo(schema *ast.Schema, tables map[string]*sqlschema.Table, joins JoinDescriptors, hints TypeEquivalenceHints, opts ...Option) (*SQLSchemaInfo, error) {
	return NewSQLSchemaInfo(dialect.Postgres, schema, tables, joins, hints, opts...)
}

// NewMySQLSchemaInfo creates a binding for a MySQL database.
func NewMySQLSchemaInfo(schema *ast.Schema, tables map[string]*sqlschema.Table, joins JoinDescriptors, hints TypeEquivalenceHints, opts ...Option) (*SQLSchemaInfo, error) {
	return NewSQLSchemaInfo(dialect.MySQL, schema, tables, joins, hints, opts...)
}

// NewMSSQLSchemaInfo creates a binding for a Microsoft SQL Server database.
func NewMSSQLSchemaInfo(schema *ast.Schema, tables map[string]*sqlschema.Table, joins JoinDescriptors, hints TypeEquivalenceHints, opts ...Option) (*SQLSchemaInfo, error) {
	return NewSQLSchemaInfo(dialect.MSSQL, schema, tables, joins, hints, opts...)
}

// Ensure every variant satisfies SchemaInfo.
var (
	_ SchemaInfo = (*MatchSchemaInfo)(nil)
	_ SchemaInfo = (*GremlinSchemaInfo)(nil)
	_ SchemaInfo = (*CypherSchemaInfo)(nil)
	_ SchemaInfo = (*SQLSchemaInfo)(nil)
)
