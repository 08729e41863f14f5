package querysearch

import (
	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// ScriptTranslator turns a backend-agnostic expression into a native
// script. The expression's declared result type (expr.DataType()) is
// what callers use to pick numeric or string handling.
//
// Errors returned by a translator are passed to the caller of Compile
// unchanged.
type ScriptTranslator interface {
	TranslateScript(expr queryir.Expression) (search.Script, error)
}
