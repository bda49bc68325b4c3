package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onegii/go-scopetimer/scopetimer"
)

// overheadCmd represents the overhead command
var overheadCmd = &cobra.Command{
	Use:   "overhead",
	Short: "Measure the cost of instrumentation",
	Long: `Run a nested workload opening about 200 000 scopes per run, either
instrumented with timing on, instrumented with timing off, or without any
instrumentation (native), and report wall time statistics over the runs.`,
	RunE: runOverhead,
}

func init() {
	rootCmd.AddCommand(overheadCmd)

	f := overheadCmd.Flags()
	f.String("mode", "on", "on, off or native")
	f.IntP("runs", "n", 1, "number of repetitions")
	f.Int("outer", 10, "outer loop count")
	f.Int("middle", 10, "middle loop count")
	f.Int("inner", 1000, "inner loop count")
	f.Int("dim", 32, "vector length of the dot product")
	f.String("results", "comp_results.txt", "file the result row is appended to, empty to skip")
	f.Bool("quiet", false, "do not print the summary after each run")

	for _, name := range []string{"mode", "runs", "outer", "middle", "inner", "dim", "results", "quiet"} {
		_ = viper.BindPFlag("overhead."+name, f.Lookup(name))
	}
}

func runOverhead(cmd *cobra.Command, args []string) error {
	mode := viper.GetString("overhead.mode")
	runs := viper.GetInt("overhead.runs")
	if runs < 1 {
		return fmt.Errorf("runs must be > 0, got %d", runs)
	}

	switch mode {
	case "on":
		scopetimer.Enable()
	case "off", "native":
		scopetimer.Disable()
	default:
		return fmt.Errorf("unknown mode %q: want on, off or native", mode)
	}

	opts, err := summaryOptions()
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if viper.GetBool("overhead.quiet") {
		out = io.Discard
	}

	w := newNestedWorkload(
		viper.GetInt("overhead.outer"),
		viper.GetInt("overhead.middle"),
		viper.GetInt("overhead.inner"),
		viper.GetInt("overhead.dim"),
		1,
	)
	l := scopetimer.New()

	elapsed := make([]time.Duration, 0, runs)
	for i := 0; i < runs; i++ {
		t0 := time.Now()
		if mode == "native" {
			w.runNative()
		} else if err := w.runInstrumented(l); err != nil {
			return err
		}
		d := time.Since(t0)

		fmt.Printf("%d: elapsed=%s\n", i, d)
		elapsed = append(elapsed, d)

		if mode != "native" {
			if err := l.Summarize(out, opts); err != nil {
				return err
			}
		}
	}

	s := summarizeRuns(elapsed)
	nscopes := w.scopes()
	perScope := float64(s.mean) / float64(nscopes)

	row := []string{
		mode,
		fmt.Sprintf("%d", runs),
		fmt.Sprintf("%d", nscopes),
		ms(s.min), ms(s.max), ms(s.mean), ms(s.median), ms(s.stdev),
		fmt.Sprintf("%.3f", perScope),
	}

	fmt.Println("\nBenchmark result:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("mode", "runs", "scopes", "min [ms]", "max [ms]", "mean [ms]", "median [ms]", "stdev [ms]", "per scope [ns]")
	table.Append(row)
	if err := table.Render(); err != nil {
		return err
	}

	return appendResult(
		viper.GetString("overhead.results"),
		[]string{"mode", "runs", "scopes", "min [ms]", "max [ms]", "mean [ms]", "median [ms]", "stdev [ms]", "per_scope[ns]"},
		row,
		[]int{7, 5, 10, 10, 10, 10, 12, 11, 13},
	)
}
