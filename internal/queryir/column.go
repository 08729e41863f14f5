package queryir

// Column describes one requested output value and how to obtain it.
//
// This is a sealed interface. Each column registers the physical fields it
// needs fetched; the projection collector only unions those registrations
// and has no field-type knowledge of its own.
type Column interface {
	columnNode() // Marker method - seals interface to this package
}

// Retrieval selects the backend mechanism used to read a field value.
type Retrieval int

const (
	// FromSource reads the value from the document body.
	FromSource Retrieval = iota
	// FromDocValues reads the columnar doc value.
	FromDocValues
	// FromStored reads a stored field.
	FromStored
)

// String names the retrieval mechanism.
func (r Retrieval) String() string {
	switch r {
	case FromDocValues:
		return "doc_values"
	case FromStored:
		return "stored"
	default:
		return "source"
	}
}

// FieldColumn reads a document field.
// Source retrieval registers Field.SourceName(), so multi-field
// sub-fields are fetched through their parent path.
type FieldColumn struct {
	Field     *FieldAttribute
	Retrieval Retrieval
}

func (FieldColumn) columnNode() {}

// NewFieldColumn picks doc values for fields that have them and the
// document body otherwise.
func NewFieldColumn(f *FieldAttribute) FieldColumn {
	r := FromSource
	if f.Type.HasDocValues() && f.Parent == nil {
		r = FromDocValues
	}
	return FieldColumn{Field: f, Retrieval: r}
}

// ScriptColumn is computed by the backend from an expression.
type ScriptColumn struct {
	Name string
	Expr Expression
}

func (ScriptColumn) columnNode() {}

// ScoreColumn returns the relevance score; it needs score tracking.
type ScoreColumn struct{}

func (ScoreColumn) columnNode() {}

// AggColumn is read from an aggregation result (bucket key or metric).
// It registers nothing.
type AggColumn struct {
	Path string
}

func (AggColumn) columnNode() {}

// ComputedColumn is evaluated client-side from other columns.
type ComputedColumn struct {
	Name   string
	Inputs []Column
}

func (ComputedColumn) columnNode() {}
