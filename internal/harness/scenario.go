package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a conformance test for one compiled query.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the CUE definitions directory. Relative paths resolve
	// against the scenario file's directory.
	Specs string `yaml:"specs"`

	// Query names the query block to compile.
	Query string `yaml:"query"`

	// Size is the page size passed to the compiler.
	Size *int `yaml:"size,omitempty"`

	// Filter is an optional clause in backend form, applied without
	// scoring.
	Filter map[string]any `yaml:"filter,omitempty"`

	// ExpectError, when set, is a substring of the error the compilation
	// must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the rendered request.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates one aspect of the rendered request.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Path is a JSON pointer into the request (equals, exists, absent,
	// length).
	Path string `yaml:"path,omitempty"`

	// Value is the expected value (equals), fingerprint (fingerprint) or
	// warning substring (warning).
	Value any `yaml:"value,omitempty"`

	// Count is the expected number of entries (length).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEquals      = "equals"
	AssertExists      = "exists"
	AssertAbsent      = "absent"
	AssertLength      = "length"
	AssertFingerprint = "fingerprint"
	AssertWarning     = "warning"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, and Specs is resolved relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}
	if info, err := os.Stat(s.Specs); err != nil || !info.IsDir() {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	}
	if s.Query == "" {
		return fmt.Errorf("query is required")
	}
	if s.Size != nil && *s.Size < 0 {
		return fmt.Errorf("size must be non-negative")
	}
	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEquals:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for equals", index)
		}
	case AssertExists, AssertAbsent:
	case AssertLength:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for length", index)
		}
	case AssertFingerprint, AssertWarning:
		if s, ok := a.Value.(string); !ok || s == "" {
			return fmt.Errorf("assertions[%d]: string value is required for %s", index, a.Type)
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if _, err := parsePointer(a.Path); err != nil {
		return fmt.Errorf("assertions[%d]: %w", index, err)
	}
	return nil
}
