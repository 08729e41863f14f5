// Package queryir defines the logical, backend-agnostic query container
// consumed by the search request compiler.
//
// ARCHITECTURE:
//
//	[planner / CUE definitions] → [queryir.Container] → [querysearch] → [search.Request]
//
// The container is produced upstream, already validated, and never
// mutated by the compiler. It carries:
//   - Query: optional predicate tree (Predicate)
//   - Columns: requested output values (Column)
//   - Aggs: grouping plan, metrics and pipeline aggregations (Aggs)
//   - Sort: ordered sort specifications (Sort)
//   - Limit: row limit, <= 0 means unset
//   - AggsOnly: no row-level output is needed
//
// SEALED INTERFACES:
//
// Predicate, Expression, Column, Sort, GroupingAgg and PipelineAgg are
// sealed with marker methods so the compiler can switch over them
// exhaustively:
//
//	switch s := sort.(type) {
//	case AttributeSort:
//	case ScriptSort:
//	case ScoreSort:
//	}
//
// Values in predicates use ir.Value (no floats).
package queryir
