package schemainfo

import (
	"sort"

	sqlschema "ariga.io/atlas/sql/schema"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/quarry/schemagraph"
)

// validateBinding checks a relational binding for structural completeness.
// For every object or interface type that is not the root query type and
// not an introspection builtin:
//
//  1. a table must be bound,
//  2. the table must carry a primary key,
//  3. every vertex field must have a join descriptor, and
//  4. every property field must have a same-named column, unless it is a
//     reserved builtin property.
//
// The pass is fail-fast: it reports the first violation in type-name
// order and performs no side effects.
func validateBinding(info *SQLSchemaInfo) error {
	schema := info.Schema()
	rootName := schemagraph.RootTypeName
	if schema.Query != nil {
		rootName = schema.Query.Name
	}
	names := make([]string, 0, len(schema.Types))
	for name := range schema.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := schema.Types[name]
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		if name == rootName || isIntrospectionType(name) {
			continue
		}
		table, ok := info.Table(name)
		if !ok {
			return &MissingTableError{Type: name}
		}
		if !hasPrimaryKey(table) {
			return &MissingPrimaryKeyError{Type: name, Table: table.Name}
		}
		for _, f := range def.Fields {
			if schemagraph.IsVertexFieldName(f.Name) {
				if _, ok := info.JoinDescriptor(name, f.Name); !ok {
					return &MissingJoinDescriptorError{Type: name, Field: f.Name}
				}
				continue
			}
			if schemagraph.IsBuiltinField(f.Name) {
				continue
			}
			if _, ok := tableColumn(table, f.Name); !ok {
				return &MissingColumnError{Type: name, Field: f.Name}
			}
		}
	}
	return nil
}

func isIntrospectionType(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

// hasPrimaryKey reports whether the table declares a primary key with at
// least one column.
func hasPrimaryKey(t *sqlschema.Table) bool {
	return t.PrimaryKey != nil && len(t.PrimaryKey.Parts) > 0
}

// tableColumn looks up a column by name on the table.
func tableColumn(t *sqlschema.Table, name string) (*sqlschema.Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
