// Command dice-eval runs every competitor on every evaluation video and
// writes the scores, overlays and logs into a timestamped run directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	dicebench "github.com/jamesainslie/go-dicebench"
	"github.com/jamesainslie/go-dicebench/internal/config"
	"github.com/jamesainslie/go-dicebench/internal/corpus"
	"github.com/jamesainslie/go-dicebench/internal/leaderboard"
	"github.com/jamesainslie/go-dicebench/internal/render"
	"github.com/jamesainslie/go-dicebench/internal/report"
	"github.com/jamesainslie/go-dicebench/runner"
)

// RunDirLayout names the per-run results directory.
const RunDirLayout = "2006-01-02@15-04-05"

const logFile = "evaluation.log"

// Set by the build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dice-eval [name executable ...] [dataDir resultsDir]",
		Short: "Benchmark dice detectors against annotated videos",
		Long: `dice-eval runs each competitor as "executable <video> <output>" on every
.avi below dataDir, scores the result file against the labelme annotation next
to the video and ranks the competitors by total score.

Competitors and directories can also be given with --competitor, --data-dir,
--results-dir, a dicebench.yaml config file or DICEBENCH_* variables.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg *config.Config) (err error) {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()

	videos, err := corpus.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	runDir := filepath.Join(cfg.ResultsDir, time.Now().Format(RunDirLayout))
	if err := os.Mkdir(runDir, 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}

	logWriter := &lumberjack.Logger{
		Filename:   filepath.Join(runDir, logFile),
		MaxSize:    50,
		MaxBackups: 3,
	}
	defer func() { err = errors.Join(err, logWriter.Close()) }()

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, logWriter), &slog.HandlerOptions{Level: level}))

	csvFile, err := os.Create(filepath.Join(runDir, report.ResultsFile))
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer func() { err = errors.Join(err, csvFile.Close()) }()

	sinks := []dicebench.Sink{
		report.NewConsole(os.Stdout, cfg.NoColor),
		report.NewCSV(csvFile),
		report.NewSummary(filepath.Join(runDir, report.SummaryFile), nil),
	}
	if cfg.Render {
		sinks = append(sinks, render.New(runDir, logger))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Listen != "" {
		board := leaderboard.New(runDir, logger)
		sinks = append(sinks, board)

		serveCtx, cancel := context.WithCancel(ctx)
		served := make(chan error, 1)
		go func() { served <- board.Serve(serveCtx, cfg.Listen) }()
		defer func() {
			cancel()
			if serr := <-served; serr != nil {
				logger.Warn("leaderboard stopped", "error", serr)
			}
		}()
	}

	r := runner.New(runner.WithTimeout(cfg.Timeout), runner.WithLogger(logger))
	e, err := dicebench.New(cfg.DicebenchCompetitors(), videos, runDir,
		dicebench.WithRunner(r),
		dicebench.WithSink(report.Multi(sinks...)),
		dicebench.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("run directory", "path", runDir, "run", e.RunID(), "timeout", r.Timeout())

	if _, err := e.Run(ctx); err != nil {
		return fmt.Errorf("evaluation aborted: %w", err)
	}

	fmt.Printf("\nResults written to %s\n", runDir)
	return nil
}
