package querysearch

import (
	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// optimizeProjection turns off body retrieval when no column reads from
// the document body.
//
// Precondition: the projection has been applied to req.
func optimizeProjection(p *Projection, req *search.Request) {
	if !p.NeedsSource() {
		req.DisableSource()
	}
}

// optimizeAggsOnly drops hits when only aggregation results are wanted.
//
// Runs after optimizeProjection and overrides it: size becomes 0 and body
// retrieval is disabled again whatever the projection decided.
func optimizeAggsOnly(container *queryir.Container, req *search.Request) {
	if !container.AggsOnly || !req.HasAggregations() {
		return
	}
	req.Size = 0
	req.DisableSource()
}
