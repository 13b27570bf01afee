// Package main provides the CLI entry point for merklebench, the
// benchmark report generator for rs-merkle-tree.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bilinearlabs/merklebench/report"
	"github.com/bilinearlabs/merklebench/runner"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	defaultDiskCommand  = "cargo test --release test_disk_space -- --ignored --no-capture"
	defaultBenchCommand = "cargo bench --features all"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	if err := root.Execute(); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		diskCommand  string
		benchCommand string
		dir          string
		timeout      time.Duration
		pretty       bool
		verbose      bool
	)

	root := &cobra.Command{
		Use:   "merklebench",
		Short: "Benchmark report generator for rs-merkle-tree",
		Long: `Merklebench runs the rs-merkle-tree disk space and criterion benchmark
suites and renders the results as Markdown tables: disk usage per store
backend, add_leaves throughput, and proof generation time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				level.Set(slog.LevelDebug)
			}

			return generateReport(cmd.Context(), logger, reportConfig{
				diskCommand:  diskCommand,
				benchCommand: benchCommand,
				dir:          dir,
				timeout:      timeout,
				pretty:       pretty,
			})
		},
	}

	flags := root.Flags()
	flags.StringVar(&diskCommand, "disk-cmd", defaultDiskCommand,
		"Command reporting per-store disk usage")
	flags.StringVar(&benchCommand, "bench-cmd", defaultBenchCommand,
		"Command running the criterion benchmark suite")
	flags.StringVar(&dir, "dir", "",
		"Working directory for both commands (default: current directory)")
	flags.DurationVar(&timeout, "timeout", 0,
		"Per-command timeout (0 waits forever)")
	flags.BoolVar(&pretty, "pretty", false,
		"Render the Markdown styled for the terminal")
	flags.BoolVar(&verbose, "verbose", false,
		"Enable debug logging")

	return root
}

type reportConfig struct {
	diskCommand  string
	benchCommand string
	dir          string
	timeout      time.Duration
	pretty       bool
}

func generateReport(
	ctx context.Context,
	logger *slog.Logger,
	cfg reportConfig,
) error {
	logger.InfoContext(ctx, "starting benchmark report",
		slog.String("disk_cmd", cfg.diskCommand),
		slog.String("bench_cmd", cfg.benchCommand),
		slog.String("dir", cfg.dir),
	)

	r := runner.New(cfg.dir, logger)

	run := func(ctx context.Context, command string) ([]string, error) {
		if cfg.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
			defer cancel()
		}

		return r.Run(ctx, command)
	}

	reportCfg := report.Config{
		DiskCommand:  cfg.diskCommand,
		BenchCommand: cfg.benchCommand,
	}

	if cfg.pretty {
		// Pretty mode buffers the whole document so glamour can
		// restyle it in one pass.
		var buf bytes.Buffer
		if err := report.Generate(ctx, &buf, run, reportCfg); err != nil {
			return err
		}

		fmt.Print(renderPretty(buf.String()))
	} else {
		if err := report.Generate(ctx, os.Stdout, run, reportCfg); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "report complete")

	return nil
}

// renderPretty styles a Markdown document for the terminal, falling
// back to the raw Markdown if rendering fails.
func renderPretty(markdown string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return out
}
