// Package quarry compiles a single graph-shaped query representation into
// backend-specific executable query forms, and splits large queries into
// bounded-cardinality sub-queries using statistical cardinality estimates.
//
// The module is organized around three concerns:
//
//   - Schema binding: associating an abstract graph schema with concrete
//     backend resources. The schemainfo package defines a family of schema
//     info values, one per backend kind. Graph backends (MATCH, Gremlin,
//     Cypher) need only the schema itself; relational backends additionally
//     carry a dialect tag, a vertex-to-table mapping, and join descriptors
//     for every vertex field.
//
//   - Validation: a relational binding is checked for structural
//     completeness before it may be used to compile queries. Every type
//     needs a table, every table a primary key, every property field a
//     column, and every vertex field a join descriptor.
//
//   - Pagination planning: the paginate package partitions a query into a
//     sequence of sub-queries with complementary range filters on a chosen
//     pagination key, so a caller can iterate a large result set in
//     fixed-size chunks without server-side cursors.
//
// Queries and schemas are GraphQL documents handled through
// github.com/vektah/gqlparser/v2. The root package provides the shared
// query-with-parameters pair and a thin parsing surface; everything else
// lives in the subpackages.
//
// All schema info values are immutable after construction and safe for
// concurrent use without locking.
package quarry
