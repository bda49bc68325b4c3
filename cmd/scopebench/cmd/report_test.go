package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeRuns(t *testing.T) {
	assert.Equal(t, runStats{}, summarizeRuns(nil))

	s := summarizeRuns([]time.Duration{4 * time.Millisecond, 2 * time.Millisecond, 6 * time.Millisecond})
	assert.Equal(t, 2*time.Millisecond, s.min)
	assert.Equal(t, 6*time.Millisecond, s.max)
	assert.Equal(t, 4*time.Millisecond, s.mean)
	assert.Equal(t, 4*time.Millisecond, s.median)
	assert.Equal(t, 2*time.Millisecond, s.stdev)

	even := summarizeRuns([]time.Duration{time.Millisecond, 3 * time.Millisecond})
	assert.Equal(t, 2*time.Millisecond, even.median)

	single := summarizeRuns([]time.Duration{time.Second})
	assert.Zero(t, single.stdev)
}

func TestAppendResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	header := []string{"mode", "mean"}
	widths := []int{6, 8}

	require.NoError(t, appendResult(path, header, []string{"lib", "1.000"}, widths))
	require.NoError(t, appendResult(path, header, []string{"native", "0.500"}, widths))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "mode   | mean    ", lines[0])
	assert.Equal(t, strings.Repeat("-", 17), lines[1])
	assert.Equal(t, "lib    | 1.000   ", lines[2])
	assert.Equal(t, "native | 0.500   ", lines[3])

	assert.NoError(t, appendResult("", header, nil, widths))
}

func TestMs(t *testing.T) {
	assert.Equal(t, "1.500", ms(1500*time.Microsecond))
}
