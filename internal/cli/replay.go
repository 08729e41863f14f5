package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/painless"
	"github.com/roach88/searchc/internal/querysearch"
	"github.com/roach88/searchc/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional, defaults to the latest run
}

// ReplayMismatch describes one query whose request changed.
type ReplayMismatch struct {
	Query    string `json:"query"`
	Stored   string `json:"stored"`
	Replayed string `json:"replayed,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ReplayReport holds the replay result for one run.
type ReplayReport struct {
	RunID         string           `json:"run_id"`
	Checked       int              `json:"checked"`
	Mismatches    []ReplayMismatch `json:"mismatches"`
	Deterministic bool             `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <specs-dir>",
		Short: "Recompile a logged run and verify determinism",
		Long: `Recompile every query recorded in a compile run and compare request
fingerprints with the logged ones.

The run's size is reused, so only changes to the definitions or to the
compiler show up as mismatches.

Exit codes:
  0 - All requests reproduced
  1 - One or more requests changed or failed to compile
  2 - Command error (database not found, unknown run, etc.)

Examples:
  searchc replay --db ./searchc.db ./defs
  searchc replay --db ./searchc.db --run 0190... ./defs
  searchc replay --db ./searchc.db ./defs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the compile log (default [store] path)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay this run (default latest)")

	return cmd
}

func runReplay(opts *ReplayOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	ctx := cmd.Context()

	cfg, logger, err := opts.environment(cmd, specsDir)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath == "" {
		return commandError(formatter, ErrCodeConfig, "no compile log: pass --db or set [store] path")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	run, err := findRun(ctx, st, opts.RunID)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		return outputCompileErrors(formatter, loadErrors)
	}
	for _, err := range loadErrors {
		logger.Warn("definition not loaded", "error", err)
	}

	c := querysearch.NewCompiler(painless.New(), querysearch.WithLogger(logger))
	recompile := func(_ context.Context, name string) (ir.Object, error) {
		q, ok := loadResult.Definitions.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("query %q not found in %s", name, specsDir)
		}
		cq, err := compileQuery(c, q, run.DefaultSize)
		if err != nil {
			return nil, err
		}
		return cq.Request, nil
	}

	formatter.VerboseLog("Replaying run %s (%d)", run.ID, run.Seq)
	result, err := st.Replay(ctx, run.ID, recompile)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	return outputReplay(formatter, newReplayReport(result))
}

// findRun returns the run with id, or the latest run when id is empty.
func findRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	if id != "" {
		return st.GetRun(ctx, id)
	}
	run, err := st.LatestRun(ctx)
	if errors.Is(err, store.ErrRunNotFound) {
		return store.Run{}, errors.New("no runs recorded in database")
	}
	return run, err
}

func newReplayReport(result store.ReplayResult) ReplayReport {
	report := ReplayReport{
		RunID:         result.Run.ID,
		Checked:       result.Checked,
		Mismatches:    make([]ReplayMismatch, 0, len(result.Mismatches)),
		Deterministic: result.Deterministic(),
	}
	for _, m := range result.Mismatches {
		rm := ReplayMismatch{Query: m.QueryName, Stored: m.Stored, Replayed: m.Replayed}
		if m.Err != nil {
			rm.Error = m.Err.Error()
		}
		report.Mismatches = append(report.Mismatches, rm)
	}
	return report
}

// outputReplay prints the report. A changed request exits with code 1.
func outputReplay(formatter *OutputFormatter, report ReplayReport) error {
	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "Run %s: %d query(s) checked\n", report.RunID, report.Checked)
		for _, m := range report.Mismatches {
			switch {
			case m.Error != "":
				fmt.Fprintf(w, "  ✗ %s: %s\n", m.Query, m.Error)
			default:
				fmt.Fprintf(w, "  ✗ %s: %s → %s\n", m.Query, shortFingerprint(m.Stored), shortFingerprint(m.Replayed))
			}
		}
		if report.Deterministic {
			fmt.Fprintln(w, "✓ All requests reproduced")
		}
	}

	if !report.Deterministic {
		return NewExitError(ExitFailure, fmt.Sprintf("replay found %d mismatch(es)", len(report.Mismatches)))
	}
	return nil
}
