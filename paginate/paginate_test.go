package paginate

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/quarry"
	"github.com/syssam/quarry/schemainfo"
	"github.com/syssam/quarry/stats"
)

const testSDL = `
schema { query: RootSchemaQuery }

type RootSchemaQuery {
	Animal: [Animal]
	Species: [Species]
}

type Animal {
	name: String
	uuid: ID
	out_Animal_OfSpecies: [Species]
}

type Species {
	name: String
	uuid: ID
	limbs: Int
}
`

const (
	animalLowerParam = "_paged_lower_param_on_Animal_uuid"
	animalUpperParam = "_paged_upper_param_on_Animal_uuid"
)

func planningInfo(t *testing.T, provider stats.Provider, keys map[string]string, uuid4 map[string]map[string]bool) *schemainfo.QueryPlanningSchemaInfo {
	t.Helper()
	schema := gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: testSDL})
	info, err := schemainfo.NewQueryPlanningSchemaInfo(schemainfo.QueryPlanningConfig{
		Schema:         schema,
		Statistics:     provider,
		PaginationKeys: keys,
		UUID4Fields:    uuid4,
	})
	require.NoError(t, err)
	return info
}

func animalInfo(t *testing.T, count int64) *schemainfo.QueryPlanningSchemaInfo {
	t.Helper()
	return planningInfo(t,
		stats.NewLocal(map[string]int64{"Animal": count}),
		map[string]string{"Animal": "uuid"},
		map[string]map[string]bool{"Animal": {"uuid": true}},
	)
}

func mustParse(t *testing.T, text string) *ast.QueryDocument {
	t.Helper()
	doc, err := quarry.ParseQuery(text)
	require.NoError(t, err)
	return doc
}

func TestPaginateUniformKey(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { name @output(out_name: "animal_name") } }`)

	result, err := Paginate(info, query, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPaged, result.Status)
	require.Len(t, result.Pages, 4)

	// The first page has only an upper bound and the last only a lower
	// bound; interior pages carry both.
	first := result.Pages[0].Parameters
	assert.Equal(t, map[string]any{
		animalUpperParam: "40000000-0000-0000-0000-000000000000",
	}, first)

	second := result.Pages[1].Parameters
	assert.Equal(t, map[string]any{
		animalLowerParam: "40000000-0000-0000-0000-000000000000",
		animalUpperParam: "80000000-0000-0000-0000-000000000000",
	}, second)

	last := result.Pages[3].Parameters
	assert.Equal(t, map[string]any{
		animalLowerParam: "c0000000-0000-0000-0000-000000000000",
	}, last)

	// The filters land on the pagination key field as @filter directives.
	root := result.Pages[1].Query.Operations[0].SelectionSet[0].(*ast.Field)
	keyField := root.SelectionSet[0].(*ast.Field)
	require.Equal(t, "uuid", keyField.Name)
	require.Len(t, keyField.Directives, 2)
	assertFilterDirective(t, keyField.Directives[0], ">=", animalLowerParam)
	assertFilterDirective(t, keyField.Directives[1], "<", animalUpperParam)
}

func assertFilterDirective(t *testing.T, d *ast.Directive, op, param string) {
	t.Helper()
	assert.Equal(t, "filter", d.Name)
	opArg := d.Arguments.ForName("op_name")
	require.NotNil(t, opArg)
	assert.Equal(t, op, opArg.Value.Raw)
	valueArg := d.Arguments.ForName("value")
	require.NotNil(t, valueArg)
	require.Len(t, valueArg.Value.Children, 1)
	assert.Equal(t, "$"+param, valueArg.Value.Children[0].Value.Raw)
}

func TestPaginateSinglePageKeepsOriginal(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { name } }`)
	params := map[string]any{"limit": 10}

	result, err := Paginate(info, query, params, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusPaged, result.Status)
	require.Len(t, result.Pages, 1)
	assert.Same(t, query, result.Pages[0].Query, "one chunk means no rewriting at all")
	assert.Equal(t, params, result.Pages[0].Parameters)
}

func TestPaginateNotPageable(t *testing.T) {
	info := planningInfo(t, stats.NewLocal(map[string]int64{"Animal": 100}), nil, nil)
	query := mustParse(t, `{ Animal { name } }`)

	result, err := Paginate(info, query, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusNotPageable, result.Status)
	require.Len(t, result.Pages, 1)
	assert.Same(t, query, result.Pages[0].Query)
}

func TestPaginateStatisticsUnavailable(t *testing.T) {
	info := planningInfo(t, stats.NewLocal(nil),
		map[string]string{"Animal": "uuid"},
		map[string]map[string]bool{"Animal": {"uuid": true}},
	)
	query := mustParse(t, `{ Animal { name } }`)

	result, err := Paginate(info, query, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusStatisticsUnavailable, result.Status)
	require.Len(t, result.Pages, 1)
	assert.Same(t, query, result.Pages[0].Query)
}

func TestPaginateIntegerKeyQuantiles(t *testing.T) {
	percentiles := make([]int64, 101)
	for i := range percentiles {
		percentiles[i] = int64(i)
	}
	provider := stats.NewLocal(
		map[string]int64{"Species": 1000},
		stats.WithFieldQuantiles(map[stats.FieldKey][]int64{
			{Vertex: "Species", Field: "limbs"}: percentiles,
		}),
	)
	info := planningInfo(t, provider, map[string]string{"Species": "limbs"}, nil)
	query := mustParse(t, `{ Species { name } }`)

	result, err := Paginate(info, query, nil, 500)
	require.NoError(t, err)
	assert.Equal(t, StatusPaged, result.Status)
	require.Len(t, result.Pages, 2)
	assert.Equal(t,
		map[string]any{"_paged_upper_param_on_Species_limbs": int64(50)},
		result.Pages[0].Parameters,
	)
	assert.Equal(t,
		map[string]any{"_paged_lower_param_on_Species_limbs": int64(50)},
		result.Pages[1].Parameters,
	)
}

func TestPaginateIntegerKeyWithoutQuantiles(t *testing.T) {
	provider := stats.NewLocal(map[string]int64{"Species": 1000})
	info := planningInfo(t, provider, map[string]string{"Species": "limbs"}, nil)
	query := mustParse(t, `{ Species { name } }`)

	result, err := Paginate(info, query, nil, 500)
	require.NoError(t, err)
	assert.Equal(t, StatusNotPageable, result.Status)
	require.Len(t, result.Pages, 1)
}

func TestPaginateInvalidPageSize(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { name } }`)

	for _, pageSize := range []int{0, -1} {
		_, err := Paginate(info, query, nil, pageSize)
		require.Error(t, err)
		assert.True(t, IsInvalidPageSize(err))
	}
}

func TestPaginateUnknownRootVertex(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Plant { name } }`)

	_, err := Paginate(info, query, nil, 1)
	require.Error(t, err)
	assert.True(t, schemainfo.IsUnknownVertex(err))
}

func TestPaginateMalformedQuery(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { name } Species { name } }`)

	_, err := Paginate(info, query, nil, 1)
	require.Error(t, err)
	assert.True(t, IsMalformedQuery(err))
}

func TestPaginateParameterCollision(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { name } }`)
	params := map[string]any{animalUpperParam: "not yours"}

	_, err := Paginate(info, query, params, 1)
	require.Error(t, err)
	assert.True(t, IsParameterCollision(err))
	var collision *ParameterCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, animalUpperParam, collision.Name)
}

func TestPaginateDoesNotMutateInput(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { uuid name } }`)
	before := quarry.FormatQuery(query)
	params := map[string]any{"limit": 10}

	result, err := Paginate(info, query, params, 1)
	require.NoError(t, err)
	require.Len(t, result.Pages, 4)

	assert.Equal(t, before, quarry.FormatQuery(query))
	assert.Equal(t, map[string]any{"limit": 10}, params)
	for _, page := range result.Pages {
		assert.NotSame(t, query, page.Query)
	}
}

func TestPaginateExistingKeySelection(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { uuid @output(out_name: "uuid") name } }`)

	result, err := Paginate(info, query, nil, 2)
	require.NoError(t, err)
	require.Len(t, result.Pages, 2)

	// The filter attaches to the already selected key field rather than
	// inserting a second uuid selection.
	op := result.Pages[0].Query.Operations[0]
	root := op.SelectionSet[0].(*ast.Field)
	require.Len(t, root.SelectionSet, 2)
	keyField := root.SelectionSet[0].(*ast.Field)
	assert.Equal(t, "uuid", keyField.Name)
	require.Len(t, keyField.Directives, 2)
	assert.Equal(t, "output", keyField.Directives[0].Name)
	assert.Equal(t, "filter", keyField.Directives[1].Name)
}

func TestPaginateAliasedKeyGetsOwnSelection(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { key: uuid name } }`)

	result, err := Paginate(info, query, nil, 2)
	require.NoError(t, err)
	require.Len(t, result.Pages, 2)

	// An aliased selection of the key does not count; a fresh unaliased
	// field is prepended instead.
	op := result.Pages[0].Query.Operations[0]
	root := op.SelectionSet[0].(*ast.Field)
	require.Len(t, root.SelectionSet, 3)
	keyField := root.SelectionSet[0].(*ast.Field)
	assert.Equal(t, "uuid", keyField.Name)
	assert.Equal(t, "uuid", keyField.Alias)
	require.Len(t, keyField.Directives, 1)
}

func TestPaginateDeterministic(t *testing.T) {
	info := animalInfo(t, 1000)
	const text = `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_OfSpecies {
				name @output(out_name: "species_name")
			}
		}
	}`

	first, err := Paginate(info, mustParse(t, text), nil, 100)
	require.NoError(t, err)
	second, err := Paginate(info, mustParse(t, text), nil, 100)
	require.NoError(t, err)

	require.Len(t, first.Pages, 10)
	require.Len(t, second.Pages, len(first.Pages))
	for i := range first.Pages {
		assert.Equal(t, first.Pages[i].String(), second.Pages[i].String())
		assert.Equal(t, first.Pages[i].Parameters, second.Pages[i].Parameters)
	}
}

func TestPaginateWithLogger(t *testing.T) {
	info := animalInfo(t, 4)
	query := mustParse(t, `{ Animal { name } }`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := Paginate(info, query, nil, 2, WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, result.Pages, 2)
	assert.Contains(t, buf.String(), "planned query pagination")
	assert.Contains(t, buf.String(), "pages=2")

	buf.Reset()
	_, err = Paginate(info, query, nil, -1, WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "pagination planning failed")
}

func TestPaginateConcurrent(t *testing.T) {
	info := animalInfo(t, 100)
	query := mustParse(t, `{ Animal { name } }`)

	want, err := Paginate(info, query, nil, 10)
	require.NoError(t, err)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			result, err := Paginate(info, query, nil, 10)
			if err != nil {
				return err
			}
			for i := range want.Pages {
				if result.Pages[i].String() != want.Pages[i].String() {
					return assert.AnError
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
