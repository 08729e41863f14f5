package querysearch

import (
	"fmt"

	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// fieldSet is a de-duplicated list that keeps first-insertion order.
type fieldSet struct {
	names []string
	seen  map[string]bool
}

func (s *fieldSet) add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[name] {
		return
	}
	s.seen[name] = true
	s.names = append(s.names, name)
}

func (s *fieldSet) len() int { return len(s.names) }

// list returns the names, or nil when the set is empty.
func (s *fieldSet) list() []string {
	if len(s.names) == 0 {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Projection is the union of the fetch requirements of a column list.
//
// The collector knows nothing about field types: each column decides
// where its value comes from and the projection only records it.
type Projection struct {
	sourceFields   fieldSet
	docValueFields fieldSet
	storedFields   fieldSet
	scriptFields   []search.ScriptField
	scriptNames    map[string]bool
	trackScores    bool
}

// SourceFields returns the document body paths to fetch.
func (p *Projection) SourceFields() []string { return p.sourceFields.list() }

// DocValueFields returns the fields read from doc values.
func (p *Projection) DocValueFields() []string { return p.docValueFields.list() }

// StoredFields returns the stored fields to fetch.
func (p *Projection) StoredFields() []string { return p.storedFields.list() }

// ScriptFields returns the backend-computed fields.
func (p *Projection) ScriptFields() []search.ScriptField {
	return append([]search.ScriptField(nil), p.scriptFields...)
}

// TrackScores reports whether any column reads the relevance score.
func (p *Projection) TrackScores() bool { return p.trackScores }

// NeedsSource reports whether any value must be read from the document body.
func (p *Projection) NeedsSource() bool { return p.sourceFields.len() > 0 }

// Empty reports whether no column registered anything.
func (p *Projection) Empty() bool {
	return p.sourceFields.len() == 0 && p.docValueFields.len() == 0 &&
		p.storedFields.len() == 0 && len(p.scriptFields) == 0 && !p.trackScores
}

// Collect visits every column and unions what each registers.
// Script columns are translated with scripts; its errors are returned
// as is.
func Collect(columns []queryir.Column, scripts ScriptTranslator) (*Projection, error) {
	p := &Projection{}
	for _, col := range columns {
		if err := p.collect(col, scripts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Projection) collect(col queryir.Column, scripts ScriptTranslator) error {
	switch c := col.(type) {
	case queryir.FieldColumn:
		switch c.Retrieval {
		case queryir.FromDocValues:
			p.docValueFields.add(c.Field.Name)
		case queryir.FromStored:
			p.storedFields.add(c.Field.Name)
		default:
			p.sourceFields.add(c.Field.SourceName())
		}
	case queryir.ScriptColumn:
		if scripts == nil {
			return errNoTranslator(fmt.Sprintf("script column %q", c.Name))
		}
		if p.scriptNames[c.Name] {
			return nil
		}
		script, err := scripts.TranslateScript(c.Expr)
		if err != nil {
			return err
		}
		if p.scriptNames == nil {
			p.scriptNames = make(map[string]bool)
		}
		p.scriptNames[c.Name] = true
		p.scriptFields = append(p.scriptFields, search.ScriptField{Name: c.Name, Script: script})
	case queryir.ScoreColumn:
		p.trackScores = true
	case queryir.AggColumn:
		// Read from aggregation output, nothing to fetch.
	case queryir.ComputedColumn:
		for _, in := range c.Inputs {
			if err := p.collect(in, scripts); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported column type: %T", col)
	}
	return nil
}

// apply writes the projection directives into req.
// Body retrieval is only configured when some source field is needed;
// turning it off is left to the optimization pass.
func (p *Projection) apply(req *search.Request) {
	if p.NeedsSource() {
		req.FetchSource = &search.FetchSource{Fetch: true, Includes: p.SourceFields()}
	}
	req.DocValueFields = p.DocValueFields()
	req.StoredFields = p.StoredFields()
	req.ScriptFields = p.ScriptFields()
	req.TrackScores = p.trackScores
}
