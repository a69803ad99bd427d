package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omnisort/internal/app"
	"omnisort/internal/config"
	"omnisort/internal/sorter"

	"github.com/spf13/cobra"
)

// errItemFailures marks a run that completed but left some files unhandled.
var errItemFailures = errors.New("completed with per-item failures")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, errItemFailures) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

// newApp reads the config and creates a SorterApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Sort", "Rollback").
func newApp(cmd *cobra.Command, operation string, workers int) (*app.SorterApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.LoadOrDefault(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewSorterApp(cfg, operation, app.Options{Workers: workers, Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "omnisort",
	Short:        "Sort a file tree into categorized folders",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Rules File: %s\n", cfg.RulesPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.LoadOrDefault(defaults["config_path"], defaults["base_dir"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:         %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:          %s\n", cfg.LogDir)
		fmt.Printf("Rules File:       %s\n", cfg.RulesPath)
		fmt.Printf("Duplicates Dir:   %s\n", cfg.DuplicatesDir)
		fmt.Printf("Database:         %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Journal:          %s %s\n", cfg.Journal.Type, cfg.Journal.Path)
		fmt.Printf("Workers:          %d\n", cfg.Sorter.Workers)
		fmt.Printf("Provider Timeout: %s\n", cfg.Sorter.ProviderTimeout)
		fmt.Printf("Perceptual Dedup: %t\n", cfg.Sorter.PerceptualDedup)
		return nil
	},
}

// sort command
var sortCmd = &cobra.Command{
	Use:   "sort PATH",
	Short: "Classify, deduplicate and move every file under PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		simulate, _ := cmd.Flags().GetBool("simulate")
		progress, _ := cmd.Flags().GetBool("progress")
		workers, _ := cmd.Flags().GetInt("workers")

		a, err := newApp(cmd, "Sort", workers)
		if err != nil {
			return err
		}
		defer a.Close()

		var reporter sorter.Reporter = app.NewLineReporter(os.Stdout)
		var bar *app.ProgressReporter
		if progress && app.IsTerminal(os.Stdout) {
			bar = app.NewProgressReporter(os.Stdout)
			reporter = bar
		}

		sum, err := a.Sort(cmd.Context(), args[0], simulate, reporter)
		if bar != nil {
			bar.Finish()
		}
		if sum != nil {
			verb := "Moved"
			if sum.Simulated {
				verb = "Would move"
			}
			fmt.Printf("Scanned %d file(s). %s %d, duplicates %d, skipped %d, failed %d\n",
				sum.Scanned, verb, sum.Moved, sum.Duplicates, sum.Skipped, sum.Failed)
		}
		if err != nil {
			return fmt.Errorf("sort failed: %w", err)
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d file(s) not moved: %w", sum.Failed, errItemFailures)
		}
		return nil
	},
}

// rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Move sorted files back to where they came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		apply, _ := cmd.Flags().GetBool("apply")
		last, _ := cmd.Flags().GetBool("last")

		a, err := newApp(cmd, "Rollback", 0)
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.Rollback(apply, last, app.NewLineReporter(os.Stdout))
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}

		if sum.Corrupt {
			fmt.Println("Warning: rollback journal is partially unreadable; showing readable entries only.")
		}
		if apply {
			fmt.Printf("Restored %d of %d entr(ies). Nothing to restore %d, conflicts %d, failed %d\n",
				sum.Restored, sum.Entries, sum.Absent, sum.Conflicts, sum.Failed)
		} else {
			fmt.Printf("Would restore %d of %d entr(ies). Nothing to restore %d, conflicts %d, failed %d\n",
				sum.Previewed, sum.Entries, sum.Absent, sum.Conflicts, sum.Failed)
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d entr(ies) not restored: %w", sum.Failed, errItemFailures)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View sort and rollback run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "GetHistory", 0)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt != nil {
				d := r.FinishedAt.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-8s  %s  %-8s  %-10s  %s\n",
				r.ID,
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
				r.RunID,
			)
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write a copy of the history database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ExportHistory", 0)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportHistory(args[0]); err != nil {
			return err
		}
		fmt.Printf("History exported to %s\n", args[0])
		return nil
	},
}

// moves command
var movesCmd = &cobra.Command{
	Use:   "moves",
	Short: "View recorded file moves",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")

		a, err := newApp(cmd, "GetMoves", 0)
		if err != nil {
			return err
		}
		defer a.Close()

		moves, err := a.GetMoves(runID, limit)
		if err != nil {
			return err
		}

		if len(moves) == 0 {
			fmt.Println("No moves recorded.")
			return nil
		}

		for _, m := range moves {
			fmt.Printf("%s  %-10s  %s -> %s\n",
				m.Timestamp.Format("2006-01-02 15:04:05"),
				m.Category,
				m.Source,
				m.Destination,
			)
		}
		return nil
	},
}

// errors command
var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "View recorded per-file failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")

		a, err := newApp(cmd, "GetErrors", 0)
		if err != nil {
			return err
		}
		defer a.Close()

		errs, err := a.GetErrors(runID, limit)
		if err != nil {
			return err
		}

		if len(errs) == 0 {
			fmt.Println("No errors recorded.")
			return nil
		}

		for _, e := range errs {
			fmt.Printf("%s  %s  %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Context,
				e.Message,
			)
		}
		return nil
	},
}

// trace command
var traceCmd = &cobra.Command{
	Use:   "trace FILENAME",
	Short: "Show where a sorted file came from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "TraceFile", 0)
		if err != nil {
			return err
		}
		defer a.Close()

		trace, err := a.TraceFile(args[0])
		if err != nil {
			return err
		}

		if trace == nil {
			fmt.Println("No recorded move placed this file.")
			return nil
		}

		m := trace.Move
		fmt.Printf("Source:   %s\n", m.Source)
		fmt.Printf("Moved:    %s\n", m.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("Category: %s\n", m.Category)
		if m.Note != "" {
			fmt.Printf("Reason:   %s\n", m.Note)
		}
		if m.Hash != "" {
			fmt.Printf("Hash:     %s\n", m.Hash)
		}
		if trace.Run != nil {
			fmt.Printf("Run:      %s (%s, %s)\n", trace.Run.RunID, trace.Run.Operation, trace.Run.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Echo debug logging to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// history subcommands
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	sortCmd.Flags().Bool("simulate", false, "Decide every move but touch nothing")
	sortCmd.Flags().Bool("progress", false, "Show a progress counter instead of one line per file")
	sortCmd.Flags().Int("workers", 0, "Concurrent metadata extractions (default: number of CPUs)")

	rollbackCmd.Flags().Bool("preview", false, "Show what would be restored (default)")
	rollbackCmd.Flags().Bool("apply", false, "Move files back")
	rollbackCmd.Flags().Bool("last", false, "Only replay the most recent run")
	rollbackCmd.MarkFlagsMutuallyExclusive("preview", "apply")

	movesCmd.Flags().IntP("limit", "n", 50, "Maximum number of moves to show")
	movesCmd.Flags().String("run", "", "Only show moves from this run ID")
	errorsCmd.Flags().IntP("limit", "n", 50, "Maximum number of errors to show")
	errorsCmd.Flags().String("run", "", "Only show errors from this run ID")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(movesCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(traceCmd)
}
