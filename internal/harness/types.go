package harness

import "github.com/roach88/searchc/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion holds (or the expected error
	// occurred).
	Pass bool `json:"pass"`

	// Request is the rendered request; nil when compilation failed.
	Request ir.Object `json:"request,omitempty"`

	// Fingerprint identifies Request.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Warnings are the container validation warnings.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Warnings: []string{},
		Errors:   []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
