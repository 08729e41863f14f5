package querysearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/searchc/internal/queryir"
)

func TestCollect_Empty(t *testing.T) {
	p, err := Collect(nil, nil)
	require.NoError(t, err)

	assert.True(t, p.Empty())
	assert.False(t, p.NeedsSource())
	assert.Nil(t, p.SourceFields())
}

func TestCollect_UnionsAndDeduplicates(t *testing.T) {
	columns := []queryir.Column{
		queryir.NewFieldColumn(titleField),
		queryir.FieldColumn{Field: titleExact, Retrieval: queryir.FromSource},
		queryir.NewFieldColumn(priceField),
		queryir.NewFieldColumn(priceField),
		queryir.FieldColumn{Field: rawField, Retrieval: queryir.FromStored},
		queryir.AggColumn{Path: "by_tag>_count"},
		queryir.ComputedColumn{Name: "ratio", Inputs: []queryir.Column{
			queryir.NewFieldColumn(tagField),
			queryir.NewFieldColumn(bodyField),
		}},
	}

	p, err := Collect(columns, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "body"}, p.SourceFields())
	assert.Equal(t, []string{"price", "tag"}, p.DocValueFields())
	assert.Equal(t, []string{"raw"}, p.StoredFields())
	assert.False(t, p.TrackScores())
	assert.True(t, p.NeedsSource())
}

func TestCollect_ScriptsAndScores(t *testing.T) {
	expr := queryir.FieldRef{Field: priceField}
	columns := []queryir.Column{
		queryir.ScriptColumn{Name: "p", Expr: expr},
		queryir.ScriptColumn{Name: "p", Expr: expr},
		queryir.ScoreColumn{},
	}

	p, err := Collect(columns, stubScripts{})
	require.NoError(t, err)

	require.Len(t, p.ScriptFields(), 1)
	assert.Equal(t, "p", p.ScriptFields()[0].Name)
	assert.True(t, p.TrackScores())
	assert.False(t, p.NeedsSource())
	assert.False(t, p.Empty())
}

func TestCollect_AggColumnRegistersNothing(t *testing.T) {
	p, err := Collect([]queryir.Column{queryir.AggColumn{Path: "avg_price"}}, nil)
	require.NoError(t, err)
	assert.True(t, p.Empty())
}
