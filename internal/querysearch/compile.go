package querysearch

import (
	"fmt"
	"log/slog"

	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// Compiler compiles logical containers into search requests.
//
// A Compiler is immutable after construction and safe for concurrent use.
// Each call to Compile allocates its own request and never mutates the
// container it is given.
type Compiler struct {
	scripts ScriptTranslator
	logger  *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug traces (dropped sorts, limit
// push-down). Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCompiler creates a Compiler. scripts may be nil when no container
// will carry script expressions; compiling one then fails.
func NewCompiler(scripts ScriptTranslator, opts ...Option) *Compiler {
	c := &Compiler{
		scripts: scripts,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds the physical request for container.
//
// filter is an optional clause in backend form that restricts results
// without scoring. size is the optional page size requested by the caller.
// Both may be nil.
//
// The only errors are those returned by the script translator, passed
// through unwrapped. Unresolvable attribute sorts are dropped silently.
func (c *Compiler) Compile(container *queryir.Container, filter search.Query, size *int) (*search.Request, error) {
	if container == nil {
		return nil, fmt.Errorf("cannot compile nil container")
	}
	req := search.NewRequest()

	// 1. Query clause
	query, err := c.queryClause(container.Query, filter)
	if err != nil {
		return nil, err
	}
	req.Query = query

	// 2. Projection
	proj, err := Collect(container.Columns, c.scripts)
	if err != nil {
		return nil, err
	}
	if !proj.Empty() {
		proj.apply(req)
	}

	// 3. Aggregations, limit pushed into the root group
	aggs, pushed := pushDownLimit(container.Aggs, container.Limit)
	if pushed {
		c.logger.Debug("limit pushed into root group",
			"group", aggs.Groups[0].GroupID(), "limit", container.Limit)
	}
	primary, pipelines, err := buildAggs(aggs, c.scripts)
	if err != nil {
		return nil, err
	}
	for _, a := range primary {
		req.AddAggregation(a)
	}

	// 4. Sort, only seen by requests without a primary aggregation tree.
	// Pipelines are registered afterwards so they do not count.
	if err := c.sorting(container, req); err != nil {
		return nil, err
	}
	for _, p := range pipelines {
		req.AddPipeline(p)
	}

	// 5-6. Post-passes, in this order
	optimizeProjection(proj, req)
	optimizeAggsOnly(container, req)

	// 7. Size
	if size != nil && !req.SizeSet() {
		sz := *size
		if container.HasLimit() {
			sz = min(container.Limit, sz)
		}
		req.Size = sz
	}

	return req, nil
}

// queryClause combines the container predicate with the external filter.
// The predicate scores; the filter never does.
func (c *Compiler) queryClause(pred queryir.Predicate, filter search.Query) (search.Query, error) {
	if pred == nil {
		if filter == nil {
			return nil, nil
		}
		return search.ConstantScore{Filter: filter}, nil
	}
	clause, err := Translate(pred, c.scripts)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return clause, nil
	}
	return search.Bool{
		Must:   []search.Query{clause},
		Filter: []search.Query{filter},
	}, nil
}

// sorting adds the sort clauses. Aggregated results cannot be ordered by
// the request sort, so nothing is added when aggregations exist. Without
// any sort specification the index order is used.
func (c *Compiler) sorting(container *queryir.Container, req *search.Request) error {
	if len(req.Aggregations) > 0 {
		if len(container.Sort) > 0 {
			c.logger.Debug("sort skipped for aggregated request", "sorts", len(container.Sort))
		}
		return nil
	}
	if len(container.Sort) == 0 {
		req.AddSort(search.IndexOrderSort{})
		return nil
	}
	r := &sortResolver{c: c, query: container.Query}
	for _, s := range container.Sort {
		clause, err := r.resolve(s)
		if err != nil {
			return err
		}
		if clause != nil {
			req.AddSort(clause)
		}
	}
	return nil
}

func errNoTranslator(what string) error {
	return fmt.Errorf("%s requires a script translator", what)
}
