// Package paginate splits a query into a sequence of sub-queries with
// complementary range filters on a chosen pagination key, so that a
// caller can iterate a large result set in fixed-size chunks without
// server-side cursors.
//
// The split is driven by statistical cardinality estimates: the planner
// never executes probe queries. Executing every emitted sub-query against
// the same data and unioning the results reproduces exactly the result
// set of the original query, the sub-query result sets are pairwise
// disjoint, and each sub-query's estimated cardinality approximates the
// requested page size. Planning is deterministic: identical inputs always
// yield an identical sequence, so retries are safe.
package paginate

import (
	"log/slog"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/quarry"
	"github.com/syssam/quarry/schemainfo"
)

// Synthesized filter parameters carry a reserved prefix so they cannot
// realistically collide with caller-supplied names.
const (
	lowerBoundParamPrefix = "_paged_lower_param_on_"
	upperBoundParamPrefix = "_paged_upper_param_on_"
)

// Filter operators attached to the pagination key. Lower bounds are
// inclusive and upper bounds exclusive, so adjacent intervals can never
// overlap.
const (
	filterOpLowerBound = ">="
	filterOpUpperBound = "<"
)

// filterDirectiveName is the directive used to attach a filter to a field.
const filterDirectiveName = "filter"

// Status is the three-valued outcome of a planning call.
type Status int

// Planning outcomes.
const (
	// StatusPaged means the query was split; Pages holds the sequence.
	StatusPaged Status = iota + 1
	// StatusNotPageable means the root vertex has no usable pagination
	// key; Pages holds the single original query. Callers fall back to
	// unpaginated execution.
	StatusNotPageable
	// StatusStatisticsUnavailable means the root vertex's cardinality is
	// unknown; Pages holds the single original query. Callers decide
	// whether to fall back or fail.
	StatusStatisticsUnavailable
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPaged:
		return "Paged"
	case StatusNotPageable:
		return "NotPageable"
	case StatusStatisticsUnavailable:
		return "StatisticsUnavailable"
	}
	return "Status(invalid)"
}

// Result is the outcome of a planning call. Whatever the status, Pages is
// never empty: the non-paged statuses carry the original query as a
// single-element sequence so callers cannot silently drop it.
type Result struct {
	// Status reports whether the query was split.
	Status Status
	// Pages is the ordered sequence of sub-queries. Result sets of the
	// pages are pairwise disjoint and union to the original result set.
	Pages []quarry.QueryWithParameters
}

// Option configures a planning call.
type Option func(*planner)

// WithLogger makes planning emit a debug record per call through the
// given structured logger. Planning is quiet by default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *planner) {
		p.logger = logger
	}
}

type planner struct {
	logger *slog.Logger
}

// Paginate splits the query into sub-queries whose estimated result
// cardinality approximates pageSize. The input query and parameter map
// are never mutated; every page carries an independent query document and
// parameter map.
//
// A non-positive pageSize fails with *InvalidPageSizeError. A query whose
// root is not a vertex class fails with *schemainfo.UnknownVertexError. A
// synthesized parameter name already bound by the caller fails with
// *ParameterCollisionError. The recoverable conditions (no pagination
// key, unknown cardinality) are reported through Result.Status, not as
// errors.
func Paginate(info *schemainfo.QueryPlanningSchemaInfo, query *ast.QueryDocument, parameters map[string]any, pageSize int, opts ...Option) (Result, error) {
	var p planner
	for _, opt := range opts {
		opt(&p)
	}
	result, err := p.plan(info, query, parameters, pageSize)
	if p.logger != nil {
		if err != nil {
			p.logger.Debug("pagination planning failed", "error", err)
		} else {
			p.logger.Debug("planned query pagination",
				"status", result.Status.String(), "pages", len(result.Pages))
		}
	}
	return result, err
}

func (p planner) plan(info *schemainfo.QueryPlanningSchemaInfo, query *ast.QueryDocument, parameters map[string]any, pageSize int) (Result, error) {
	if pageSize <= 0 {
		return Result{}, &InvalidPageSizeError{PageSize: pageSize}
	}
	root, err := rootField(query)
	if err != nil {
		return Result{}, err
	}
	graph := info.Graph()
	if !graph.IsVertex(root.Name) {
		return Result{}, &schemainfo.UnknownVertexError{Name: root.Name}
	}
	original := quarry.QueryWithParameters{Query: query, Parameters: parameters}

	key, ok := info.PaginationKey(root.Name)
	if !ok {
		return Result{Status: StatusNotPageable, Pages: []quarry.QueryWithParameters{original}}, nil
	}
	count, ok := info.Statistics().VertexCount(root.Name)
	if !ok {
		return Result{Status: StatusStatisticsUnavailable, Pages: []quarry.QueryWithParameters{original}}, nil
	}

	chunks := chunkCount(count, pageSize)
	if chunks == 1 {
		// A single chunk is the original query, with no filters added.
		return Result{Status: StatusPaged, Pages: []quarry.QueryWithParameters{original}}, nil
	}

	var boundaries []any
	switch {
	case info.IsUUID4Field(root.Name, key):
		for _, p := range uuidSplitPoints(chunks) {
			boundaries = append(boundaries, p)
		}
	default:
		quantiles, ok := info.Statistics().FieldQuantiles(root.Name, key)
		if !ok {
			// No positional information about the key's domain.
			return Result{Status: StatusNotPageable, Pages: []quarry.QueryWithParameters{original}}, nil
		}
		for _, p := range intSplitPoints(quantiles, chunks) {
			boundaries = append(boundaries, p)
		}
	}
	if len(boundaries) == 0 {
		return Result{Status: StatusPaged, Pages: []quarry.QueryWithParameters{original}}, nil
	}

	lowerParam := lowerBoundParamPrefix + root.Name + "_" + key
	upperParam := upperBoundParamPrefix + root.Name + "_" + key
	pages := make([]quarry.QueryWithParameters, 0, len(boundaries)+1)
	for i := 0; i <= len(boundaries); i++ {
		extra := make(map[string]any, 2)
		var directives ast.DirectiveList
		// The first interval has no lower bound and the last interval no
		// upper bound; together the intervals cover the whole domain.
		if i > 0 {
			directives = append(directives, filterDirective(filterOpLowerBound, lowerParam))
			extra[lowerParam] = boundaries[i-1]
		}
		if i < len(boundaries) {
			directives = append(directives, filterDirective(filterOpUpperBound, upperParam))
			extra[upperParam] = boundaries[i]
		}
		merged, err := mergeParameters(parameters, extra)
		if err != nil {
			return Result{}, err
		}
		doc := copyDocument(query)
		pageRoot, err := rootField(doc)
		if err != nil {
			return Result{}, err
		}
		attachKeyFilters(pageRoot, key, directives)
		pages = append(pages, quarry.QueryWithParameters{Query: doc, Parameters: merged})
	}
	return Result{Status: StatusPaged, Pages: pages}, nil
}

// chunkCount returns max(1, ceil(count/pageSize)).
func chunkCount(count int64, pageSize int) int {
	if count <= 0 {
		return 1
	}
	k := (count + int64(pageSize) - 1) / int64(pageSize)
	if k < 1 {
		k = 1
	}
	return int(k)
}

// rootField returns the single root vertex selection of the query.
func rootField(doc *ast.QueryDocument) (*ast.Field, error) {
	if len(doc.Operations) == 0 {
		return nil, &MalformedQueryError{Reason: "document has no operations"}
	}
	op := doc.Operations[0]
	if op.Operation != ast.Query {
		return nil, &MalformedQueryError{Reason: "first operation is not a query"}
	}
	var fields []*ast.Field
	for _, sel := range op.SelectionSet {
		if f, ok := sel.(*ast.Field); ok {
			fields = append(fields, f)
		}
	}
	if len(fields) != 1 {
		return nil, &MalformedQueryError{Reason: "query must have exactly one root vertex selection"}
	}
	return fields[0], nil
}

// attachKeyFilters adds the interval filters to the pagination-key field
// of the root selection, inserting the field if the query does not select
// it.
func attachKeyFilters(root *ast.Field, key string, directives ast.DirectiveList) {
	for _, sel := range root.SelectionSet {
		if f, ok := sel.(*ast.Field); ok && f.Name == key && f.Alias == f.Name {
			f.Directives = append(f.Directives, directives...)
			return
		}
	}
	keyField := &ast.Field{Alias: key, Name: key, Directives: directives}
	root.SelectionSet = append(ast.SelectionSet{keyField}, root.SelectionSet...)
}

// filterDirective builds @filter(op_name: "<op>", value: ["$<param>"]).
func filterDirective(op, param string) *ast.Directive {
	return &ast.Directive{
		Name: filterDirectiveName,
		Arguments: ast.ArgumentList{
			{
				Name:  "op_name",
				Value: &ast.Value{Raw: op, Kind: ast.StringValue},
			},
			{
				Name: "value",
				Value: &ast.Value{
					Kind: ast.ListValue,
					Children: ast.ChildValueList{
						{Value: &ast.Value{Raw: "$" + param, Kind: ast.StringValue}},
					},
				},
			},
		},
	}
}

// mergeParameters produces the union of two parameter maps that must not
// overlap. The inputs are never mutated.
func mergeParameters(original, extra map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(original)+len(extra))
	for k, v := range original {
		merged[k] = v
	}
	for k, v := range extra {
		if _, exists := merged[k]; exists {
			return nil, &ParameterCollisionError{Name: k}
		}
		merged[k] = v
	}
	return merged, nil
}
