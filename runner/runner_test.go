package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRunner(dir string) *Runner {
	return New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunStdoutThenStderr(t *testing.T) {
	r := testRunner("")
	lines, err := r.Run(context.Background(), `sh -c 'echo out1; echo err1 1>&2; echo out2'`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"out1", "out2", "err1"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %v, want %v", len(lines), lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunHonorsQuoting(t *testing.T) {
	r := testRunner("")
	lines, err := r.Run(context.Background(), `echo 'hello world' again`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(lines) != 1 || lines[0] != "hello world again" {
		t.Errorf("lines = %v, want [hello world again]", lines)
	}
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	r := testRunner(dir)
	lines, err := r.Run(context.Background(), "cat marker.txt")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("lines = %v, want [hello]", lines)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	r := testRunner("")
	lines, err := r.Run(context.Background(), `sh -c 'echo boom 1>&2; exit 3'`)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if lines != nil {
		t.Errorf("lines = %v, want nil on failure", lines)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not carry the child's stderr", err)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	r := testRunner("")
	for _, command := range []string{"", "   "} {
		if _, err := r.Run(context.Background(), command); err == nil {
			t.Errorf("Run(%q): expected error for empty command", command)
		}
	}
}

func TestRunUnknownBinary(t *testing.T) {
	r := testRunner("")
	_, err := r.Run(context.Background(), "no-such-binary-for-sure --flag")
	if err == nil {
		t.Error("expected error for unknown binary")
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := testRunner("")
	if _, err := r.Run(ctx, "sh -c 'sleep 5'"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"one\n", []string{"one"}},
		{"one\ntwo", []string{"one", "two"}},
		{"one\r\ntwo\r\n", []string{"one", "two"}},
		{"\n\n", []string{"", ""}},
	}

	for _, tt := range tests {
		got := splitLines(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitLines(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSplitLinesKeepsOversizedLines(t *testing.T) {
	// Criterion can emit very long progress lines; nothing after one
	// may be lost.
	long := strings.Repeat("x", 70*1024)
	diskLine := "store sqlite.db depth 32 num_leaves 1000000 size: 471.59 MiB"

	lines := splitLines(long + "\n" + diskLine + "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != long {
		t.Errorf("oversized line length = %d, want %d", len(lines[0]), len(long))
	}
	if lines[1] != diskLine {
		t.Errorf("line after the oversized one = %q, want %q", lines[1], diskLine)
	}
}
