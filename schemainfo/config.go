package schemainfo

import (
	"fmt"
	"io"
	"sort"
	"strings"

	sqlschema "ariga.io/atlas/sql/schema"
	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"

	"github.com/syssam/quarry/dialect"
	"github.com/syssam/quarry/stats"
)

// BindingConfig is a declarative relational binding loaded from a YAML
// manifest: the dialect, per-type tables with columns and primary keys,
// join descriptors, and the pagination metadata consumed by the planner.
//
// A manifest looks like:
//
//	dialect: postgres
//	types:
//	  Animal:
//	    table: animals        # optional, derived from the type name if omitted
//	    primary_key: [uuid]
//	    columns:
//	      - {name: uuid, type: varchar}
//	      - {name: name, type: varchar}
//	    joins:
//	      out_Animal_ParentOf: {from_column: uuid, to_column: parent_uuid}
//	pagination:
//	  keys: {Animal: uuid}
//	  uuid4_fields: {Animal: [uuid]}
type BindingConfig struct {
	dialect        dialect.Dialect
	tables         map[string]*sqlschema.Table
	joins          JoinDescriptors
	paginationKeys map[string]string
	uuid4Fields    map[string]map[string]bool
}

type bindingManifest struct {
	Dialect    string                  `yaml:"dialect"`
	Types      map[string]typeManifest `yaml:"types"`
	Pagination paginationManifest      `yaml:"pagination"`
}

type typeManifest struct {
	Table      string                  `yaml:"table"`
	PrimaryKey []string                `yaml:"primary_key"`
	Columns    []columnManifest        `yaml:"columns"`
	Joins      map[string]joinManifest `yaml:"joins"`
}

type columnManifest struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type joinManifest struct {
	FromColumn string `yaml:"from_column"`
	ToColumn   string `yaml:"to_column"`
}

type paginationManifest struct {
	Keys        map[string]string   `yaml:"keys"`
	UUID4Fields map[string][]string `yaml:"uuid4_fields"`
}

// LoadBindingConfig reads a YAML binding manifest from r.
func LoadBindingConfig(r io.Reader) (*BindingConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schemainfo: reading binding manifest: %w", err)
	}
	return ParseBindingConfig(data)
}

// ParseBindingConfig parses a YAML binding manifest.
func ParseBindingConfig(data []byte) (*BindingConfig, error) {
	var m bindingManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("schemainfo: parsing binding manifest: %w", err)
	}
	d := dialect.Dialect(m.Dialect)
	if !d.Valid() {
		return nil, fmt.Errorf("schemainfo: binding manifest: unsupported dialect %q", m.Dialect)
	}
	cfg := &BindingConfig{
		dialect:        d,
		tables:         make(map[string]*sqlschema.Table, len(m.Types)),
		joins:          make(JoinDescriptors),
		paginationKeys: m.Pagination.Keys,
		uuid4Fields:    make(map[string]map[string]bool, len(m.Pagination.UUID4Fields)),
	}
	typeNames := make([]string, 0, len(m.Types))
	for name := range m.Types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	for _, name := range typeNames {
		tm := m.Types[name]
		table, err := buildTable(name, tm)
		if err != nil {
			return nil, err
		}
		cfg.tables[name] = table
		if len(tm.Joins) > 0 {
			joins := make(map[string]DirectJoinDescriptor, len(tm.Joins))
			for field, jm := range tm.Joins {
				if jm.FromColumn == "" || jm.ToColumn == "" {
					return nil, fmt.Errorf("schemainfo: binding manifest: join %s.%s needs both from_column and to_column", name, field)
				}
				joins[field] = DirectJoinDescriptor{FromColumn: jm.FromColumn, ToColumn: jm.ToColumn}
			}
			cfg.joins[name] = joins
		}
	}
	for vertex, fields := range m.Pagination.UUID4Fields {
		set := make(map[string]bool, len(fields))
		for _, f := range fields {
			set[f] = true
		}
		cfg.uuid4Fields[vertex] = set
	}
	return cfg, nil
}

func buildTable(typeName string, tm typeManifest) (*sqlschema.Table, error) {
	name := tm.Table
	if name == "" {
		name = DefaultTableName(typeName)
	}
	if len(tm.Columns) == 0 {
		return nil, fmt.Errorf("schemainfo: binding manifest: type %s declares no columns", typeName)
	}
	table := sqlschema.NewTable(name)
	byName := make(map[string]*sqlschema.Column, len(tm.Columns))
	for _, cm := range tm.Columns {
		if cm.Name == "" {
			return nil, fmt.Errorf("schemainfo: binding manifest: type %s has a column without a name", typeName)
		}
		if byName[cm.Name] != nil {
			return nil, fmt.Errorf("schemainfo: binding manifest: type %s declares column %q twice", typeName, cm.Name)
		}
		col := buildColumn(cm)
		byName[cm.Name] = col
		table.AddColumns(col)
	}
	if len(tm.PrimaryKey) > 0 {
		pk := make([]*sqlschema.Column, 0, len(tm.PrimaryKey))
		for _, cn := range tm.PrimaryKey {
			col, ok := byName[cn]
			if !ok {
				return nil, fmt.Errorf("schemainfo: binding manifest: type %s primary key references undeclared column %q", typeName, cn)
			}
			pk = append(pk, col)
		}
		table.SetPrimaryKey(sqlschema.NewPrimaryKey(pk...))
	}
	return table, nil
}

func buildColumn(cm columnManifest) *sqlschema.Column {
	raw := cm.Type
	switch strings.ToLower(cm.Type) {
	case "int", "integer", "bigint", "smallint":
		if raw == "" {
			raw = "integer"
		}
		return sqlschema.NewIntColumn(cm.Name, raw)
	case "bool", "boolean":
		return sqlschema.NewBoolColumn(cm.Name, raw)
	case "float", "double", "real", "decimal", "numeric":
		return sqlschema.NewFloatColumn(cm.Name, raw)
	default:
		if raw == "" {
			raw = "varchar"
		}
		return sqlschema.NewStringColumn(cm.Name, raw)
	}
}

// DefaultTableName derives a table name from a type name: snake case,
// pluralized. AnimalSpecies becomes animal_species.
func DefaultTableName(typeName string) string {
	return inflect.Pluralize(inflect.Underscore(typeName))
}

// Dialect returns the dialect the manifest declares.
func (c *BindingConfig) Dialect() dialect.Dialect { return c.dialect }

// Tables returns the materialized vertex-to-table mapping.
func (c *BindingConfig) Tables() map[string]*sqlschema.Table { return c.tables }

// JoinDescriptors returns the declared join descriptors.
func (c *BindingConfig) JoinDescriptors() JoinDescriptors { return c.joins }

// PaginationKeys returns the declared per-vertex pagination keys.
func (c *BindingConfig) PaginationKeys() map[string]string { return c.paginationKeys }

// UUID4Fields returns the declared per-vertex uniform-UUID field sets.
func (c *BindingConfig) UUID4Fields() map[string]map[string]bool { return c.uuid4Fields }

// SchemaInfo builds a validated SQLSchemaInfo from the manifest's tables
// and joins against the given schema.
func (c *BindingConfig) SchemaInfo(schema *ast.Schema, hints TypeEquivalenceHints, opts ...Option) (*SQLSchemaInfo, error) {
	return NewSQLSchemaInfo(c.dialect, schema, c.tables, c.joins, hints, opts...)
}

// QueryPlanningConfig assembles the planner inputs declared by the
// manifest with the given schema and statistics provider.
func (c *BindingConfig) QueryPlanningConfig(schema *ast.Schema, hints TypeEquivalenceHints, statistics stats.Provider) QueryPlanningConfig {
	return QueryPlanningConfig{
		Schema:               schema,
		TypeEquivalenceHints: hints,
		Statistics:           statistics,
		PaginationKeys:       c.paginationKeys,
		UUID4Fields:          c.uuid4Fields,
	}
}
