package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/searchc/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate query definitions without compiling requests",
		Long: `Validate the field mapping and query blocks of a CUE definitions
directory.

Reports every error rather than stopping at the first one. Warnings
describe well-formed queries that probably do not do what was meant.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	if _, _, err := opts.environment(cmd, specsDir); err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		code, message := ErrCodeGeneric, "nothing to validate"
		if len(loadErrors) > 0 {
			code, message = parseCompileError(loadErrors[0])
		}
		return commandError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	errs, warnings := validateAll(loadResult, loadErrors, formatter)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs, warnings)
	}
	return outputValidateSuccess(formatter, warnings)
}

// validateAll turns load errors into validation errors and runs the
// schema checks over whatever compiled.
func validateAll(loadResult *LoadResult, loadErrors []error, formatter *OutputFormatter) (errs, warnings []compiler.ValidationError) {
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			errs = append(errs, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    lineOf(loadErr.Pos),
			})
			continue
		}
		errs = append(errs, compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric})
	}

	for _, q := range loadResult.Definitions.Queries {
		formatter.VerboseLog("Validating query: %s", q.Name)
	}

	schemaErrs, schemaWarnings := compiler.Validate(loadResult.Definitions)
	for _, e := range schemaErrs {
		// Already reported as a load error.
		if e.Code == compiler.ErrNoQueries && len(loadErrors) > 0 {
			continue
		}
		errs = append(errs, e)
	}
	return errs, schemaWarnings
}

func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, warnings []compiler.ValidationError) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Warnings: warnings})
	}

	fmt.Fprintln(formatter.Writer, "✓ All definitions valid")
	printValidationWarnings(formatter, warnings)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
// Validation failures exit with code 1.
func outputValidationErrors(formatter *OutputFormatter, errs, warnings []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:    false,
				Errors:   errs,
				Warnings: warnings,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := encodeIndented(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	printValidationWarnings(formatter, warnings)

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func printValidationWarnings(formatter *OutputFormatter, warnings []compiler.ValidationError) {
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s: %s: %s\n", w.Code, w.Field, w.Message)
	}
}
