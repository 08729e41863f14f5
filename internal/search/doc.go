// Package search models the physical request consumed by a
// document-oriented search engine: query clause, aggregation tree,
// sort clauses, result size and projection directives.
//
// A Request is built by querysearch and handed to the execution layer,
// which owns the wire codec. Render produces the request's DSL as an
// ir.Object so it can be fingerprinted, golden-tested or printed; the
// rendering follows the engine's JSON DSL key for key.
//
// Query, Sort, Aggregation and PipelineAggregation are open interfaces:
// callers may supply their own clauses (an externally built filter, for
// example) as long as they render themselves.
package search
