package search

import "github.com/roach88/searchc/internal/ir"

// DefaultScriptLang is the script language emitted when Lang is empty.
const DefaultScriptLang = "painless"

// Script is a backend-native script with its parameters.
type Script struct {
	Source string
	Lang   string
	Params ir.Object
}

// Render returns the script object.
func (s Script) Render() ir.Object {
	lang := s.Lang
	if lang == "" {
		lang = DefaultScriptLang
	}
	out := ir.Object{
		"source": ir.String(s.Source),
		"lang":   ir.String(lang),
	}
	if len(s.Params) > 0 {
		out["params"] = s.Params
	}
	return out
}
