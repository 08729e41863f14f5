package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/searchc/internal/compiler"
	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/painless"
	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/querysearch"
	"github.com/roach88/searchc/internal/search"
)

// Harness runs scenarios. Definitions directories are loaded once and
// reused across scenarios. A Harness is not safe for concurrent use.
type Harness struct {
	compiler *querysearch.Compiler
	logger   *slog.Logger
	defs     map[string]*compiler.Definitions
}

// New creates a harness compiling with the painless translator.
// A nil logger discards log output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{
		compiler: querysearch.NewCompiler(painless.New(), querysearch.WithLogger(logger)),
		logger:   logger,
		defs:     map[string]*compiler.Definitions{},
	}
}

// Run executes a scenario with a fresh harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a scenario and evaluates its assertions.
//
// Compilation failures pass when they match ExpectError and are
// returned as errors otherwise. Assertion failures are reported in the
// result, not as errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	filter, err := scenarioFilter(scenario.Filter)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	req, warnings, compileErr := h.compile(scenario, filter)
	result.Warnings = append(result.Warnings, warnings...)

	if scenario.ExpectError != "" {
		switch {
		case compileErr == nil:
			result.AddError(fmt.Sprintf("expected error containing %q, compilation succeeded", scenario.ExpectError))
		case !strings.Contains(compileErr.Error(), scenario.ExpectError):
			result.AddError(fmt.Sprintf("expected error containing %q, got %q", scenario.ExpectError, compileErr.Error()))
		}
		return result, nil
	}
	if compileErr != nil {
		return nil, compileErr
	}

	result.Request = req.Render()
	result.Fingerprint, err = ir.RequestFingerprint(result.Request)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", scenario.Name, err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	h.logger.Debug("scenario executed", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

// compile loads the scenario's definitions, validates the query and
// compiles it.
func (h *Harness) compile(scenario *Scenario, filter search.Query) (*search.Request, []string, error) {
	defs, err := h.definitions(scenario.Specs)
	if err != nil {
		return nil, nil, err
	}
	q, ok := defs.Lookup(scenario.Query)
	if !ok {
		return nil, nil, fmt.Errorf("query %q not found in %s", scenario.Query, scenario.Specs)
	}

	v := queryir.Validate(q.Container)
	if !v.Valid {
		return nil, v.Warnings, fmt.Errorf("query %q is invalid: %s", q.Name, strings.Join(v.Errors, "; "))
	}

	req, err := h.compiler.Compile(q.Container, filter, scenario.Size)
	if err != nil {
		return nil, v.Warnings, fmt.Errorf("compile %q: %w", q.Name, err)
	}
	return req, v.Warnings, nil
}

func (h *Harness) definitions(dir string) (*compiler.Definitions, error) {
	if defs, ok := h.defs[dir]; ok {
		return defs, nil
	}
	defs, err := compiler.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	h.defs[dir] = defs
	return defs, nil
}

// scenarioFilter converts the YAML filter into a backend clause.
func scenarioFilter(raw map[string]any) (search.Query, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := ir.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return search.Raw{Body: v.(ir.Object)}, nil
}
