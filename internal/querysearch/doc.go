// Package querysearch compiles a logical query container into a physical
// search request.
//
// Compilation runs as a single pass in fixed order:
//
//	query clause → projection → aggregations (limit push-down) → sort
//	→ pipelines → projection optimization → aggregation-only override → size
//
// Later steps read state set by earlier ones, so the order is part of the
// contract. The compiler performs no I/O and keeps no state between calls.
// Turning expressions into backend scripts is delegated to an injected
// ScriptTranslator.
package querysearch
