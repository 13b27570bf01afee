// Package extract parses benchmark suite output into structured
// performance records. Extractors scan captured lines, skip anything
// they do not recognize, and never fail: garbage in means fewer
// records out.
package extract

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DiskRecord is the on-disk footprint of one store configuration.
type DiskRecord struct {
	Store   string
	Depth   int
	Leaves  int
	SizeMiB float64
}

// ThroughputRecord is the measured insertion rate of one benchmark.
type ThroughputRecord struct {
	Depth       int
	Hash        string
	Store       string
	KelemPerSec float64
}

// ProofTimingRecord is the latency of one proof benchmark, always in
// milliseconds regardless of the unit criterion printed.
type ProofTimingRecord struct {
	Depth  int
	Hash   string
	Store  string
	TimeMs float64
}

var (
	// store sqlite.db depth 32 num_leaves 1000000 size: 471.59 MiB
	diskRe = regexp.MustCompile(`(?i)store\s+(\S+)\s+depth\s+(\d+)\s+num_leaves\s+(\d+)\s+size:\s+([\d.]+)\s+MiB`)

	// inserts/sqlite_store/depth32_keccak256
	insertIDRe = regexp.MustCompile(`inserts/([a-zA-Z0-9]+)_store/depth(\d+)_([a-zA-Z0-9]+)`)

	// thrpt:  [10.462 Kelem/s 10.486 Kelem/s 10.510 Kelem/s]
	thrptRe = regexp.MustCompile(`thrpt:\s*\[\s*([\d.]+)\s+Kelem/s\s+([\d.]+)\s+Kelem/s\s+([\d.]+)\s+Kelem/s`)

	// get_proof/sqlite_store/depth32_keccak256
	proofIDRe = regexp.MustCompile(`get_proof/([a-zA-Z0-9]+)_store/depth(\d+)_([a-zA-Z0-9]+)`)

	// time:   [7.8148 ms 7.8307 ms 7.8462 ms]
	// Only the first unit is validated. The other two slots take any
	// word token; criterion prints µs, which `\w` would reject.
	timeRe = regexp.MustCompile(`(?i)time:\s*\[\s*([\d.]+)\s+(ns|us|µs|ms|s)\s+([\d.]+)\s+[\p{L}\p{N}_]+\s+([\d.]+)\s+[\p{L}\p{N}_]+`)
)

// msPerUnit converts criterion time units to milliseconds. There is
// no fallback entry: a measurement with an unrecognized unit is
// rejected rather than guessed at.
var msPerUnit = map[string]float64{
	"ns": 1e-6,
	"us": 1e-3,
	"µs": 1e-3,
	"ms": 1,
	"s":  1000,
}

// DiskRecords extracts disk space report entries, one record per
// matching line, in input order. The store file name is reduced to
// its base name without extension, so "target/sqlite.db" reports as
// "sqlite".
func DiskRecords(lines []string) []DiskRecord {
	var recs []DiskRecord
	for _, line := range lines {
		m := diskRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		recs = append(recs, DiskRecord{
			Store:   storeStem(m[1]),
			Depth:   toInt(m[2]),
			Leaves:  toInt(m[3]),
			SizeMiB: toFloat(m[4]),
		})
	}
	return recs
}

// ThroughputRecords extracts insertion throughput results, sorted
// ascending by Kelem/s. Criterion reports [low mid high]; the middle
// estimate is kept.
func ThroughputRecords(lines []string) []ThroughputRecord {
	var recs []ThroughputRecord
	scanPairs(lines, insertIDRe, thrptRe, func(id benchID, m []string) bool {
		recs = append(recs, ThroughputRecord{
			Depth:       id.depth,
			Hash:        id.hash,
			Store:       id.store,
			KelemPerSec: toFloat(m[2]),
		})
		return true
	})
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].KelemPerSec < recs[j].KelemPerSec
	})
	return recs
}

// ProofTimings extracts proof generation timings normalized to
// milliseconds, sorted ascending so the fastest configuration comes
// first.
func ProofTimings(lines []string) []ProofTimingRecord {
	var recs []ProofTimingRecord
	scanPairs(lines, proofIDRe, timeRe, func(id benchID, m []string) bool {
		factor, ok := msPerUnit[strings.ToLower(m[2])]
		if !ok {
			return false
		}
		recs = append(recs, ProofTimingRecord{
			Depth:  id.depth,
			Hash:   id.hash,
			Store:  id.store,
			TimeMs: toFloat(m[3]) * factor,
		})
		return true
	})
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].TimeMs < recs[j].TimeMs
	})
	return recs
}

// benchID identifies one benchmark while its measurement line is
// still awaited.
type benchID struct {
	depth int
	hash  string
	store string
}

// scanPairs correlates benchmark id lines with the first measurement
// line that follows. Every line is tested for an id first; a fresh id
// silently replaces an unpaired one, and an id that never pairs
// produces nothing. Measurement lines only count while an id is
// pending. The measure callback reports whether it accepted the
// match; a rejected measurement leaves the pending id live.
func scanPairs(lines []string, idRe, measureRe *regexp.Regexp, measure func(id benchID, m []string) bool) {
	var pending *benchID
	for _, line := range lines {
		if m := idRe.FindStringSubmatch(line); m != nil {
			pending = &benchID{
				store: m[1],
				depth: toInt(m[2]),
				hash:  m[3],
			}
			continue
		}
		if pending == nil {
			continue
		}
		m := measureRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if measure(*pending, m) {
			pending = nil
		}
	}
}

// storeStem strips any path prefix and file extension from a store
// file name. A bare dotfile name like ".db" has no extension to strip
// and is kept whole.
func storeStem(file string) string {
	base := filepath.Base(file)
	if ext := filepath.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Numeric captures come from \d+ and [\d.]+ groups; a malformed
// capture parses as zero instead of failing the record.

func toInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func toFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
