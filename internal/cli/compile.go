package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/searchc/internal/compiler"
	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/painless"
	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/querysearch"
	"github.com/roach88/searchc/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Size   int    // requested page size, ignored unless set
	Query  string // compile only this query
	Output string // output file path
	DB     string // compile log path
	Watch  bool
}

// CompiledQuery is one rendered request.
type CompiledQuery struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Request     ir.Object `json:"request"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// CompilationResult holds the compiled requests of one invocation.
type CompilationResult struct {
	Queries []CompiledQuery `json:"queries"`
	RunID   string          `json:"run_id,omitempty"`
	Output  string          `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile query definitions to search requests",
		Long: `Compile every query block in a CUE definitions directory into a
physical search request.

Requests are printed to stdout. With --output they are also written as
canonical JSON. With --db (or [store] path in searchc.toml) each
invocation is recorded in the compile log for later replay.

Examples:
  searchc compile ./defs
  searchc compile ./defs --query recent --size 20
  searchc compile ./defs --db searchc.db --format json
  searchc compile ./defs --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Size, "size", 0, "requested page size")
	cmd.Flags().StringVar(&opts.Query, "query", "", "compile only the named query")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical JSON to file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this compile log")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "recompile when definitions change")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	cfg, logger, err := opts.environment(cmd, specsDir)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}

	size := requestedSize(cmd, opts.Size, cfg.DefaultSize)
	dbPath := opts.DB
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}

	once := func() error {
		return compileAndReport(cmd.Context(), opts, formatter, logger, specsDir, size, dbPath)
	}

	if !opts.Watch {
		return once()
	}

	if err := once(); err != nil {
		logger.Warn("compile failed", "dir", specsDir, "error", err)
	}
	err = watchDefinitions(cmd.Context(), specsDir, defaultDebounce, logger, func() {
		if err := once(); err != nil {
			logger.Warn("compile failed", "dir", specsDir, "error", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return commandError(formatter, ErrCodeScanError, err.Error())
	}
	return nil
}

// requestedSize returns the --size flag when given, else the configured
// default. Zero means no size.
func requestedSize(cmd *cobra.Command, flag, configured int) *int {
	switch {
	case cmd.Flags().Changed("size"):
		return &flag
	case configured > 0:
		return &configured
	default:
		return nil
	}
}

func compileAndReport(ctx context.Context, opts *CompileOptions, formatter *OutputFormatter, logger *slog.Logger, specsDir string, size *int, dbPath string) error {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		return outputCompileErrors(formatter, loadErrors)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	queries, err := selectQueries(loadResult.Definitions, opts.Query)
	if err != nil {
		return outputCompileErrors(formatter, []error{err})
	}

	compiled, errs := compileQueries(queries, size, logger)
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	result := &CompilationResult{Queries: compiled}

	if opts.Output != "" {
		if err := writeRequestsToFile(compiled, opts.Output); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		result.Output = opts.Output
	}

	if dbPath != "" {
		runID, err := recordRun(ctx, dbPath, specsDir, size, compiled)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		result.RunID = runID
		logger.Info("run recorded", "run", runID, "db", dbPath, "queries", len(compiled))
	}

	return outputCompileSuccess(formatter, result)
}

// selectQueries returns every query, or only the named one.
func selectQueries(defs *compiler.Definitions, name string) ([]compiler.Query, error) {
	if name == "" {
		return defs.Queries, nil
	}
	q, ok := defs.Lookup(name)
	if !ok {
		return nil, &LoadError{Code: ErrCodeQuery, Message: fmt.Sprintf("query %q not found", name)}
	}
	return []compiler.Query{*q}, nil
}

// compileQueries validates and compiles each query, collecting errors.
func compileQueries(queries []compiler.Query, size *int, logger *slog.Logger) ([]CompiledQuery, []error) {
	c := querysearch.NewCompiler(painless.New(), querysearch.WithLogger(logger))

	var (
		compiled []CompiledQuery
		errs     []error
	)
	for i := range queries {
		q := &queries[i]
		cq, err := compileQuery(c, q, size)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeQuery, Message: err.Error(), Pos: q.Pos})
			continue
		}
		logger.Debug("query compiled", "query", q.Name, "fingerprint", cq.Fingerprint)
		compiled = append(compiled, cq)
	}
	return compiled, errs
}

func compileQuery(c *querysearch.Compiler, q *compiler.Query, size *int) (CompiledQuery, error) {
	v := queryir.Validate(q.Container)
	if !v.Valid {
		return CompiledQuery{}, fmt.Errorf("query %q is invalid: %s", q.Name, strings.Join(v.Errors, "; "))
	}
	req, err := c.Compile(q.Container, nil, size)
	if err != nil {
		return CompiledQuery{}, fmt.Errorf("query %q: %w", q.Name, err)
	}
	rendered := req.Render()
	fp, err := ir.RequestFingerprint(rendered)
	if err != nil {
		return CompiledQuery{}, fmt.Errorf("query %q: %w", q.Name, err)
	}
	return CompiledQuery{Name: q.Name, Fingerprint: fp, Request: rendered, Warnings: v.Warnings}, nil
}

// recordRun writes one run and its compilations to the compile log.
func recordRun(ctx context.Context, dbPath, specsDir string, size *int, compiled []CompiledQuery) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	dir, err := filepath.Abs(specsDir)
	if err != nil {
		dir = specsDir
	}
	run, err := st.BeginRun(ctx, dir, size)
	if err != nil {
		return "", err
	}
	for _, cq := range compiled {
		err := st.WriteCompilation(ctx, store.Compilation{
			RunID:       run.ID,
			QueryName:   cq.Name,
			Fingerprint: cq.Fingerprint,
			Request:     cq.Request,
		})
		if err != nil {
			return "", err
		}
	}
	return run.ID, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d query(s)\n\n", len(result.Queries))
	for _, cq := range result.Queries {
		fmt.Fprintf(w, "%s (%s)\n", cq.Name, shortFingerprint(cq.Fingerprint))
		for _, warning := range cq.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
		if err := encodeIndented(w, cq.Request); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if result.Output != "" {
		fmt.Fprintf(w, "Wrote requests to %s\n", result.Output)
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
	}
	return nil
}

// outputCompileErrors outputs load and compile errors. They are
// command-level errors (exit code 2).
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if len(errs) == 0 {
		errs = []error{&LoadError{Code: ErrCodeGeneric, Message: "nothing to compile"}}
	}

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := encodeIndented(formatter.Writer, CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeRequestsToFile writes {name: {fingerprint, request}} as canonical
// JSON, so identical definitions produce identical files.
func writeRequestsToFile(compiled []CompiledQuery, filename string) error {
	out := ir.Object{}
	for _, cq := range compiled {
		out[cq.Name] = ir.Object{
			"fingerprint": ir.String(cq.Fingerprint),
			"request":     cq.Request,
		}
	}
	data, err := ir.MarshalCanonical(out)
	if err != nil {
		return fmt.Errorf("marshaling requests: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
