// Package report renders extracted benchmark records as a Markdown
// document with one pipe table per benchmark family.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bilinearlabs/merklebench/extract"
)

// RunFunc executes one benchmark suite command and returns its
// combined output lines. (*runner.Runner).Run satisfies it.
type RunFunc func(ctx context.Context, command string) ([]string, error)

// Config names the external commands whose output feeds the report.
type Config struct {
	DiskCommand  string
	BenchCommand string
}

// Generate runs the disk space suite and the criterion suite and
// writes the report to w as sections become available, so a failing
// benchmark command leaves the sections already written intact. A
// section with no extracted records is omitted entirely.
func Generate(ctx context.Context, w io.Writer, run RunFunc, cfg Config) error {
	diskLines, err := run(ctx, cfg.DiskCommand)
	if err != nil {
		return fmt.Errorf("disk space suite: %w", err)
	}

	fmt.Fprintln(w, "## Benchmarks")
	fmt.Fprintln(w)

	if disk := extract.DiskRecords(diskLines); len(disk) > 0 {
		fmt.Fprintln(w, "### Disk space usage")
		fmt.Fprintln(w)
		DiskTable(w, disk)
		fmt.Fprintln(w)
	}

	benchLines, err := run(ctx, cfg.BenchCommand)
	if err != nil {
		return fmt.Errorf("benchmark suite: %w", err)
	}

	// TODO: add the batch size to the throughput table and benchmark a
	// range of batch sizes.
	if thrpt := extract.ThroughputRecords(benchLines); len(thrpt) > 0 {
		fmt.Fprintln(w, "### `add_leaves` throughput")
		fmt.Fprintln(w)
		ThroughputTable(w, thrpt)
		fmt.Fprintln(w)
	}

	if proofs := extract.ProofTimings(benchLines); len(proofs) > 0 {
		fmt.Fprintln(w, "### `proof` time")
		fmt.Fprintln(w)
		ProofTable(w, proofs)
	}

	return nil
}

// DiskTable writes one row per store with its size in MiB.
func DiskTable(w io.Writer, recs []extract.DiskRecord) {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.Store,
			strconv.Itoa(r.Depth),
			strconv.Itoa(r.Leaves),
			fmt.Sprintf("%.2f", r.SizeMiB),
		})
	}
	writeTable(w, []string{"Store", "Depth", "Leaves", "Size (MiB)"}, rows)
}

// ThroughputTable writes insertion rates in Kelem/s, in the order
// given. Extractors sort, tables do not.
func ThroughputTable(w io.Writer, recs []extract.ThroughputRecord) {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			strconv.Itoa(r.Depth),
			r.Hash,
			r.Store,
			fmt.Sprintf("%.3f", r.KelemPerSec),
		})
	}
	writeTable(w, []string{"Depth", "Hash", "Store", "Throughput (Kelem/s)"}, rows)
}

// ProofTable writes proof generation times rescaled to a readable
// unit.
func ProofTable(w io.Writer, recs []extract.ProofTimingRecord) {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		val, unit := scaleTime(r.TimeMs)
		rows = append(rows, []string{
			strconv.Itoa(r.Depth),
			r.Hash,
			r.Store,
			fmt.Sprintf("%.3f %s", val, unit),
		})
	}
	writeTable(w, []string{"Depth", "Hash", "Store", "Time"}, rows)
}

// writeTable writes a Markdown pipe table: header row, separator row,
// then one row per record.
func writeTable(w io.Writer, header []string, rows [][]string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintln(w, strings.Repeat("|---", len(header))+"|")
	for _, row := range rows {
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
}

// scaleTime picks the largest unit that keeps a millisecond value at
// or above one, down to nanoseconds.
func scaleTime(ms float64) (float64, string) {
	switch {
	case ms >= 1000:
		return ms / 1000, "s"
	case ms >= 1:
		return ms, "ms"
	case ms >= 0.001:
		return ms * 1000, "µs"
	default:
		return ms * 1e6, "ns"
	}
}
