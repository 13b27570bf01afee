// Package runner executes external benchmark commands and captures
// their output for extraction.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"
)

// Runner executes benchmark suite commands in a fixed working
// directory.
type Runner struct {
	Dir    string
	Logger *slog.Logger
}

// New creates a Runner that executes commands in dir. An empty dir
// means the current directory.
func New(dir string, logger *slog.Logger) *Runner {
	return &Runner{
		Dir:    dir,
		Logger: logger,
	}
}

// Run executes command, given as a single shell-quoted string, and
// returns its output as lines: the full standard output first, then
// the full standard error. A non-zero exit reports an error carrying
// the child's stderr; no lines are returned in that case.
func (r *Runner) Run(ctx context.Context, command string) ([]string, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	r.Logger.DebugContext(ctx, "resolved argv", slog.Any("argv", argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.InfoContext(ctx, "running command",
		slog.String("command", command),
		slog.String("dir", r.Dir),
	)

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("command %q failed: %w\nstderr: %s", command, err, stderr.String())
	}

	lines := splitLines(stdout.String() + stderr.String())

	r.Logger.InfoContext(ctx, "command finished",
		slog.String("command", argv[0]),
		slog.Duration("wall_time", time.Since(wallStart)),
		slog.Int("lines", len(lines)),
	)

	return lines, nil
}

// splitLines splits text into lines without their terminators. The
// text is split in memory, so there is no limit on line length.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
