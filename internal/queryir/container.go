package queryir

// Container is the logical query awaiting physical translation.
//
// Semantics:
//
//	SELECT <Columns> WHERE <Query> GROUP BY <Aggs> ORDER BY <Sort> LIMIT <Limit>
//
// The container is owned by the caller. The compiler only reads it, so
// callers must not mutate it while a compilation is in flight.
type Container struct {
	Query    Predicate // nil = no predicate
	Columns  []Column
	Aggs     Aggs
	Sort     []Sort
	Limit    int  // <= 0 means unset
	AggsOnly bool // only aggregation results are needed, no hits
}

// HasLimit reports whether a positive row limit is declared.
func (c *Container) HasLimit() bool {
	return c.Limit > 0
}
