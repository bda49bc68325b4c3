package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onegii/go-scopetimer/scopetimer"
)

// memoryCmd represents the memory command
var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Measure tree memory and summarize cost",
	Long: `Build pipeline timing trees of growing size and report, for each size,
the heap held by the tree, the process resident set size and the time spent
producing a summary.`,
	RunE: runMemory,
}

func init() {
	rootCmd.AddCommand(memoryCmd)

	f := memoryCmd.Flags()
	f.IntSlice("iterations", []int{10, 100, 1000, 10000}, "pipeline iterations per measurement")
	f.Int("predictions", 20, "prediction scopes per iteration")

	for _, name := range []string{"iterations", "predictions"} {
		_ = viper.BindPFlag("memory."+name, f.Lookup(name))
	}
}

type memorySample struct {
	iterations int
	records    int
	heap       uint64
	rss        uint64
	summarize  time.Duration
}

func runMemory(cmd *cobra.Command, args []string) error {
	scopetimer.Enable()

	opts, err := summaryOptions()
	if err != nil {
		return err
	}
	opts.Color = false

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("inspect own process: %w", err)
	}

	predictions := viper.GetInt("memory.predictions")
	var samples []memorySample
	for _, n := range viper.GetIntSlice("memory.iterations") {
		s, err := measurePipeline(proc, n, predictions, opts)
		if err != nil {
			return err
		}
		samples = append(samples, s)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("iterations", "records", "tree heap", "rss", "summarize [ms]")
	for _, s := range samples {
		table.Append([]string{
			fmt.Sprintf("%d", s.iterations),
			fmt.Sprintf("%d", s.records),
			formatBytes(s.heap),
			formatBytes(s.rss),
			ms(s.summarize),
		})
	}
	return table.Render()
}

func measurePipeline(proc *process.Process, iterations, predictions int, opts scopetimer.SummaryOptions) (memorySample, error) {
	var before, after runtime.MemStats

	runtime.GC()
	runtime.ReadMemStats(&before)

	l := scopetimer.New()
	runPipeline(l, iterations, predictions)

	runtime.GC()
	runtime.ReadMemStats(&after)

	mi, err := proc.MemoryInfo()
	if err != nil {
		return memorySample{}, fmt.Errorf("read memory info: %w", err)
	}

	t0 := time.Now()
	if err := l.Summarize(io.Discard, opts); err != nil {
		return memorySample{}, err
	}

	heap := uint64(0)
	if after.HeapAlloc > before.HeapAlloc {
		heap = after.HeapAlloc - before.HeapAlloc
	}

	s := memorySample{
		iterations: iterations,
		records:    iterations * (8 + predictions),
		heap:       heap,
		rss:        mi.RSS,
		summarize:  time.Since(t0),
	}
	runtime.KeepAlive(l)

	return s, nil
}

func formatBytes(n uint64) string {
	switch {
	case n > 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n > 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d Bytes", n)
	}
}
