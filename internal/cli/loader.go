package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/searchc/internal/compiler"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the definitions loaded from a directory.
type LoadResult struct {
	Definitions *compiler.Definitions
	CUEValue    cue.Value // the raw CUE value
	FileCount   int
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles the query definitions in dir.
//
// A nil result means nothing could be loaded. Otherwise the result holds
// every query that compiled. Broken queries are skipped and reported in
// the error slice. In LoadModeFailFast at most one error is returned.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, err := compiler.LoadValue(dir)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: compileErr.Message, Pos: compileErr.Pos}}
		}
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}}
	}

	result := &LoadResult{
		Definitions: &compiler.Definitions{Fields: compiler.Mapping{}},
		CUEValue:    value,
		FileCount:   len(cueFiles),
	}

	// A broken mapping makes every query meaningless.
	if fv := value.LookupPath(cue.ParsePath("fields")); fv.Exists() {
		m, err := compiler.CompileMapping(fv)
		if err != nil {
			return nil, []error{convertCompileError(err, "fields")}
		}
		result.Definitions.Fields = m
	}

	qv := value.LookupPath(cue.ParsePath("query"))
	if !qv.Exists() {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no queries found in specs"}}
	}
	iter, err := qv.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating queries: %v", err)}}
	}

	var errs []error
	for iter.Next() {
		q, err := compiler.CompileQuery(iter.Value(), result.Definitions.Fields)
		if err != nil {
			errs = append(errs, convertCompileError(err, "query."+iter.Label()))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Definitions.Queries = append(result.Definitions.Queries, *q)
	}

	if len(result.Definitions.Queries) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no queries found in specs"})
	}
	return result, errs
}

// FindCUEFiles returns the .cue files directly inside dir. Only the
// top-level package is loaded, so subdirectories are not searched.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants, shared by all commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Config file or flag error
	ErrCodeStore       = "E009" // Compile log error

	// Definition errors
	ErrCodeMapping    = "E120" // Invalid field mapping
	ErrCodeField      = "E121" // Unknown or mistyped field reference
	ErrCodePredicate  = "E122" // Invalid where clause
	ErrCodeSelect     = "E123" // Invalid select column
	ErrCodeOrderBy    = "E124" // Invalid order_by entry
	ErrCodeAggs       = "E125" // Invalid group_by, metrics or pipelines
	ErrCodeExpression = "E126" // Invalid script expression
	ErrCodeInvalidCUE = "E127" // CUE evaluation error
	ErrCodeQuery      = "E128" // Unknown query or compile failure
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	head, _, _ := strings.Cut(field, ".")
	switch head {
	case "fields", "type":
		return ErrCodeMapping
	case "field", "value":
		return ErrCodeField
	case "where", "predicate":
		return ErrCodePredicate
	case "select":
		return ErrCodeSelect
	case "order_by":
		return ErrCodeOrderBy
	case "group_by", "metrics", "pipelines", "limit":
		return ErrCodeAggs
	case "expression":
		return ErrCodeExpression
	case "cue":
		return ErrCodeInvalidCUE
	case "query":
		return ErrCodeQuery
	default:
		return ErrCodeGeneric
	}
}
