package queryir

// Sort is one ordering criterion.
//
// This is a closed sum type: AttributeSort, ScriptSort and ScoreSort.
// Resolvers switch over it exhaustively.
type Sort interface {
	sortNode() // Marker method - seals interface to this package
	Dir() Direction
}

// AttributeSort orders by a document field.
// Attribute may be nil when the planner could not bind the sort key to a
// field; such sorts are dropped by the compiler.
type AttributeSort struct {
	Attribute *FieldAttribute
	Direction Direction
}

func (AttributeSort) sortNode() {}

// Dir returns the sort direction.
func (s AttributeSort) Dir() Direction { return s.Direction }

// ScriptSort orders by a computed expression.
type ScriptSort struct {
	Expr      Expression
	Direction Direction
}

func (ScriptSort) sortNode() {}

// Dir returns the sort direction.
func (s ScriptSort) Dir() Direction { return s.Direction }

// ScoreSort orders by relevance score.
type ScoreSort struct {
	Direction Direction
}

func (ScoreSort) sortNode() {}

// Dir returns the sort direction.
func (s ScoreSort) Dir() Direction { return s.Direction }
