package cmd

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"
)

// runStats summarizes the wall time of repeated runs.
type runStats struct {
	min, max, mean, median, stdev time.Duration
}

func summarizeRuns(runs []time.Duration) runStats {
	if len(runs) == 0 {
		return runStats{}
	}

	sorted := make([]time.Duration, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	mean := float64(total) / float64(len(sorted))

	s := runStats{
		min:  sorted[0],
		max:  sorted[len(sorted)-1],
		mean: time.Duration(mean),
	}

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.median = sorted[mid]
	}

	// sample standard deviation, 0 for a single run
	if len(sorted) >= 2 {
		sq := 0.0
		for _, d := range sorted {
			diff := float64(d) - mean
			sq += diff * diff
		}
		s.stdev = time.Duration(math.Sqrt(sq / float64(len(sorted)-1)))
	}
	return s
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
}

func formatRow(row []string, widths []int) string {
	cells := make([]string, len(row))
	for i, v := range row {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		cells[i] = fmt.Sprintf("%-*s", w, v)
	}
	return strings.Join(cells, " | ")
}

// appendResult appends row to the results file at path, writing the header
// first when the file is new or empty.
func appendResult(path string, header, row []string, widths []int) error {
	if path == "" {
		return nil
	}

	writeHeader := true
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		writeHeader = false
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	total := 3 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}

	var b strings.Builder
	if writeHeader {
		b.WriteString(formatRow(header, widths) + "\n")
		b.WriteString(strings.Repeat("-", total) + "\n")
	}
	b.WriteString(formatRow(row, widths) + "\n")

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}
