package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ritzau/check-circular-import/pkg/config"
	"github.com/ritzau/check-circular-import/pkg/cycles"
	"github.com/ritzau/check-circular-import/pkg/detector"
	"github.com/ritzau/check-circular-import/pkg/logging"
	"github.com/ritzau/check-circular-import/pkg/output"
	"github.com/ritzau/check-circular-import/pkg/watcher"
)

var version = "0.1.0"

// errCyclesFound makes the process exit with 1 rather than 2.
var errCyclesFound = errors.New("circular imports found")

const (
	quietPeriod = 300 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code: 0 without
// cycles, 1 with cycles, 2 on any error.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errCyclesFound):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-circular-import [directory]",
		Short: "Detect circular imports in Python projects",
		Long: `Detect circular imports in Python projects.

Every .py file below the directory is parsed and its imports of other
modules in the same project become edges of a dependency graph. Each
distinct cycle in that graph is reported. The exit code is 0 when there
are no cycles, 1 when there are, and 2 on errors.`,
		Example: `  check-circular-import .
  check-circular-import /path/to/project
  check-circular-import . --ignore tests,docs
  check-circular-import . --json > report.json
  check-circular-import . --watch`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return analyze(cmd.Context(), cmd, root, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func analyze(ctx context.Context, cmd *cobra.Command, root string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cmd.Flags(), root)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if err := logging.Setup(stderr, level, cfg.LogFormat); err != nil {
		return err
	}

	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	d, err := detector.New(root, cfg.Ignore)
	if err != nil {
		return err
	}

	if cfg.Verbose() && format == output.FormatText {
		output.PrintSettings(stdout, d.Root(), d.IgnoreDirs())
	}

	res := d.Analyze(ctx)
	if err := output.Write(stdout, format, output.NewReport(res, cfg.IncludeGraph)); err != nil {
		return err
	}

	if cfg.Watch {
		res, err = watch(ctx, d, res, func(r *detector.Result) error {
			return output.Write(stdout, format, output.NewReport(r, cfg.IncludeGraph))
		}, stderr)
		if err != nil {
			return err
		}
	}

	if res.HasCycles() {
		return errCyclesFound
	}
	return nil
}

// watch re-runs the analysis on d after every debounced batch of changes
// until ctx is done, and returns the last result.
func watch(ctx context.Context, d *detector.Detector, last *detector.Result, report func(*detector.Result) error, stderr io.Writer) (*detector.Result, error) {
	fw, err := watcher.NewFileWatcher(d.Root(), d.Finder())
	if err != nil {
		return nil, err
	}
	if err := fw.Start(ctx); err != nil {
		return nil, err
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	fmt.Fprintf(stderr, "Watching %s for changes, press Ctrl+C to stop\n", d.Root())

	snapshot := cycles.NewSnapshot(last.Cycles)
	for ev := range debouncer.Output() {
		logging.Info("change detected, re-analyzing", "type", ev.Type.String(), "paths", len(ev.Paths))
		last = d.Analyze(ctx)
		if err := report(last); err != nil {
			return nil, err
		}

		diff := cycles.ComputeDiff(snapshot, last.Cycles)
		for _, c := range diff.Added {
			logging.Warn("new circular import", "cycle", strings.Join(c, " -> "))
		}
		for _, c := range diff.Resolved {
			logging.Info("circular import resolved", "cycle", strings.Join(c, " -> "))
		}
		snapshot = cycles.NewSnapshot(last.Cycles)
	}

	return last, nil
}
