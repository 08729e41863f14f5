package search

import "github.com/roach88/searchc/internal/ir"

// Order is a sort order.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Sort is one sort clause.
type Sort interface {
	Render() ir.Object
}

// FieldSort orders by a field value.
type FieldSort struct {
	Field  string
	Order  Order
	Nested *NestedSort
}

// AppendNested attaches level at the deepest existing nested level of the
// sort, or as the first level when none exists. Existing levels are never
// replaced.
func (s *FieldSort) AppendNested(level *NestedSort) {
	if s.Nested == nil {
		s.Nested = level
		return
	}
	s.Nested.Deepest().Nested = level
}

// Render returns {"<field>":{"order":...,"nested":...}}.
func (s FieldSort) Render() ir.Object {
	body := ir.Object{"order": ir.String(s.Order)}
	if s.Nested != nil {
		body["nested"] = s.Nested.Render()
	}
	return ir.Object{s.Field: body}
}

// NestedSort scopes a sort to elements of a nested array.
// Levels form a singly-linked chain from the outermost path inward; the
// owning FieldSort owns the whole chain.
type NestedSort struct {
	Path   string
	Filter Query
	Nested *NestedSort
}

// Deepest returns the innermost level of the chain starting at n.
func (n *NestedSort) Deepest() *NestedSort {
	cur := n
	for cur.Nested != nil {
		cur = cur.Nested
	}
	return cur
}

// Depth returns the number of levels in the chain starting at n.
func (n *NestedSort) Depth() int {
	depth := 0
	for cur := n; cur != nil; cur = cur.Nested {
		depth++
	}
	return depth
}

// Render returns the nested sort object.
func (n *NestedSort) Render() ir.Object {
	body := ir.Object{"path": ir.String(n.Path)}
	if n.Filter != nil {
		body["filter"] = n.Filter.Render()
	}
	if n.Nested != nil {
		body["nested"] = n.Nested.Render()
	}
	return body
}

// ScriptSortType selects how script values compare.
type ScriptSortType string

const (
	ScriptSortNumber ScriptSortType = "number"
	ScriptSortString ScriptSortType = "string"
)

// ScriptSort orders by a script result.
type ScriptSort struct {
	Script Script
	Type   ScriptSortType
	Order  Order
}

// Render returns the _script sort clause.
func (s ScriptSort) Render() ir.Object {
	return ir.Object{"_script": ir.Object{
		"type":   ir.String(s.Type),
		"script": s.Script.Render(),
		"order":  ir.String(s.Order),
	}}
}

// ScoreSort orders by relevance score.
type ScoreSort struct {
	Order Order
}

// Render returns the _score sort clause.
func (s ScoreSort) Render() ir.Object {
	return ir.Object{"_score": ir.Object{"order": ir.String(s.Order)}}
}

// IndexOrderSort orders by index order. It skips scoring and gives a
// stable order for pagination.
type IndexOrderSort struct{}

// Render returns the _doc sort clause.
func (IndexOrderSort) Render() ir.Object {
	return ir.Object{"_doc": ir.Object{"order": ir.String(OrderAsc)}}
}
