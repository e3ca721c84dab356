package schemainfo

import (
	"testing"

	sqlschema "ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/quarry/dialect"
)

const testSDL = `
schema { query: RootSchemaQuery }

type RootSchemaQuery {
	Animal: [Animal]
	Species: [Species]
	Entity: [Entity]
}

interface Entity {
	name: String
	uuid: ID
}

type Animal implements Entity {
	name: String
	uuid: ID
	limbs: Int
	out_Animal_ParentOf: [Animal]
	in_Animal_ParentOf: [Animal]
	out_Animal_OfSpecies: [Species]
}

type Species implements Entity {
	name: String
	uuid: ID
	limbs: Int
	in_Animal_OfSpecies: [Animal]
}

union AnimalOrSpecies = Animal | Species
`

func loadTestSchema(t *testing.T) *ast.Schema {
	t.Helper()
	return mustLoadSDL(t, testSDL)
}

func mustLoadSDL(t *testing.T, sdl string) *ast.Schema {
	t.Helper()
	return gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
}

func newTestTable(name string, pk string, columns ...string) *sqlschema.Table {
	table := sqlschema.NewTable(name)
	var pkCol *sqlschema.Column
	for _, cn := range columns {
		col := sqlschema.NewStringColumn(cn, "varchar")
		table.AddColumns(col)
		if cn == pk {
			pkCol = col
		}
	}
	if pkCol != nil {
		table.SetPrimaryKey(sqlschema.NewPrimaryKey(pkCol))
	}
	return table
}

func testTables() map[string]*sqlschema.Table {
	return map[string]*sqlschema.Table{
		"Animal":  newTestTable("animals", "uuid", "uuid", "name", "limbs"),
		"Species": newTestTable("species", "uuid", "uuid", "name", "limbs"),
		"Entity":  newTestTable("entities", "uuid", "uuid", "name"),
	}
}

func testJoins() JoinDescriptors {
	return JoinDescriptors{
		"Animal": {
			"out_Animal_ParentOf":  {FromColumn: "uuid", ToColumn: "parent_uuid"},
			"in_Animal_ParentOf":   {FromColumn: "parent_uuid", ToColumn: "uuid"},
			"out_Animal_OfSpecies": {FromColumn: "species_uuid", ToColumn: "uuid"},
		},
		"Species": {
			"in_Animal_OfSpecies": {FromColumn: "uuid", ToColumn: "species_uuid"},
		},
	}
}

func TestGraphVariants(t *testing.T) {
	schema := loadTestSchema(t)
	hints := TypeEquivalenceHints{"Entity": "AnimalOrSpecies"}

	match, err := NewMatchSchemaInfo(schema, hints)
	require.NoError(t, err)
	gremlin, err := NewGremlinSchemaInfo(schema, hints)
	require.NoError(t, err)
	cypher, err := NewCypherSchemaInfo(schema, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		info    SchemaInfo
		backend Backend
	}{
		{"match", match, Match},
		{"gremlin", gremlin, Gremlin},
		{"cypher", cypher, Cypher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.backend, tt.info.Backend())
			assert.Same(t, schema, tt.info.Schema())
		})
	}
	assert.Equal(t, hints, match.TypeEquivalenceHints())
	assert.Nil(t, cypher.TypeEquivalenceHints())
}

func TestTypeEquivalenceHintChecks(t *testing.T) {
	schema := loadTestSchema(t)
	tests := []struct {
		name   string
		hints  TypeEquivalenceHints
		reason string
	}{
		{"unknown key", TypeEquivalenceHints{"Plant": "AnimalOrSpecies"}, "key is not a schema type"},
		{"union key", TypeEquivalenceHints{"AnimalOrSpecies": "AnimalOrSpecies"}, "key is not an object or interface type"},
		{"unknown value", TypeEquivalenceHints{"Entity": "PlantsOrFungi"}, "value is not a schema type"},
		{"non-union value", TypeEquivalenceHints{"Entity": "Animal"}, "value is not a union type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenericSchemaInfo(schema, tt.hints)
			require.Error(t, err)
			var hintErr *TypeEquivalenceError
			require.ErrorAs(t, err, &hintErr)
			assert.Equal(t, tt.reason, hintErr.Reason)
			assert.True(t, IsBindingError(err))
		})
	}
}

func TestNewSQLSchemaInfo(t *testing.T) {
	schema := loadTestSchema(t)
	tables := testTables()
	joins := testJoins()

	info, err := NewSQLSchemaInfo(dialect.Postgres, schema, tables, joins, nil)
	require.NoError(t, err)
	assert.Equal(t, SQL, info.Backend())
	assert.Equal(t, dialect.Postgres, info.Dialect())

	// The maps are shared by reference, not copied.
	gotTables := info.Tables()
	assert.Equal(t, len(tables), len(gotTables))
	table, ok := info.Table("Animal")
	require.True(t, ok)
	assert.Same(t, tables["Animal"], table)

	jd, ok := info.JoinDescriptor("Animal", "out_Animal_ParentOf")
	require.True(t, ok)
	assert.Equal(t, DirectJoinDescriptor{FromColumn: "uuid", ToColumn: "parent_uuid"}, jd)
	_, ok = info.JoinDescriptor("Animal", "out_Animal_EatenBy")
	assert.False(t, ok)
}

func TestSQLSchemaInfoAccessorsStable(t *testing.T) {
	schema := loadTestSchema(t)
	info, err := NewPostgresSchemaInfo(schema, testTables(), testJoins(), nil)
	require.NoError(t, err)

	// Repeated reads return identical values.
	for range 3 {
		assert.Equal(t, dialect.Postgres, info.Dialect())
		assert.Same(t, schema, info.Schema())
		table, ok := info.Table("Species")
		require.True(t, ok)
		assert.Equal(t, "species", table.Name)
	}
}

func TestDialectConstructors(t *testing.T) {
	schema := loadTestSchema(t)
	tests := []struct {
		name string
		ctor func(*ast.Schema, map[string]*sqlschema.Table, JoinDescriptors, TypeEquivalenceHints, ...Option) (*SQLSchemaInfo, error)
		want dialect.Dialect
	}{
		{"postgres", NewPostgresSchemaInfo, dialect.Postgres},
		{"mysql", NewMySQLSchemaInfo, dialect.MySQL},
		{"mssql", NewMSSQLSchemaInfo, dialect.MSSQL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := tt.ctor(schema, testTables(), testJoins(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Dialect())
		})
	}
}
