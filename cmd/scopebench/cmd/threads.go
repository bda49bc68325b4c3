package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/onegii/go-scopetimer/scopetimer"
	"github.com/onegii/go-scopetimer/scopetimer/promexport"
)

// threadsCmd represents the threads command
var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Aggregate timing trees built by concurrent workers",
	Long: `Run a main process whose stages fan out to worker goroutines. Every
worker times its own tree, exports it to a shared collection and resets.
The main tree and the merged worker trees are printed at the end.`,
	RunE: runThreads,
}

func init() {
	rootCmd.AddCommand(threadsCmd)

	f := threadsCmd.Flags()
	f.Int("workers-b", 2, "workers of stage B")
	f.Int("workers-d", 4, "workers of stage D")
	f.Duration("scale", 100*time.Millisecond, "base sleep of the simulated tasks")
	f.String("output", "tree", "merged output format: tree, table, json or yaml")
	f.String("metrics-addr", "", "serve merged trees as Prometheus metrics on this address")
	f.Duration("linger", 0, "keep serving metrics this long after the run")

	for _, name := range []string{"workers-b", "workers-d", "scale", "output", "metrics-addr", "linger"} {
		_ = viper.BindPFlag("threads."+name, f.Lookup(name))
	}
}

func runThreads(cmd *cobra.Command, args []string) error {
	scopetimer.Enable()

	opts, err := summaryOptions()
	if err != nil {
		return err
	}

	scale := viper.GetDuration("threads.scale")
	registry := scopetimer.NewRegistry()
	results := &scopetimer.Collection{}

	if addr := viper.GetString("threads.metrics-addr"); addr != "" {
		srv := serveMetrics(addr, results)
		defer func() {
			if linger := viper.GetDuration("threads.linger"); linger > 0 {
				time.Sleep(linger)
			}
			srv.Close()
		}()
	}

	ctx, local := scopetimer.Ensure(cmd.Context())

	err = local.Time("Main_Process", func() error {
		return local.Time("A", func() error {
			if err := fanOut(ctx, "B", viper.GetInt("threads.workers-b"), func(l *scopetimer.Local, rng *rand.Rand) error {
				return l.Time("Task_B", func() error {
					if err := l.Time("SubTask_B1", func() error {
						sleepBetween(rng, scale*2, scale*4)
						return nil
					}); err != nil {
						return err
					}
					return l.Time("SubTask_B2", func() error {
						sleepBetween(rng, scale, scale*3)
						return nil
					})
				})
			}, registry, results); err != nil {
				return err
			}

			if err := local.Time("C", func() error {
				time.Sleep(scale * 3)
				return nil
			}); err != nil {
				return err
			}

			return fanOut(ctx, "D", viper.GetInt("threads.workers-d"), func(l *scopetimer.Local, rng *rand.Rand) error {
				return l.Time("Task_D", func() error {
					sleepBetween(rng, scale, scale*2)
					return nil
				})
			}, registry, results)
		})
	})
	if err != nil {
		return err
	}

	fmt.Println("main goroutine:")
	if err := local.Summarize(os.Stdout, opts); err != nil {
		return err
	}

	fmt.Printf("\nmerged results of %d workers:\n", results.Len())
	return printMerged(results.Merged(), viper.GetString("threads.output"), opts)
}

// fanOut runs task on n workers named stage-i. Each worker uses its own Local
// from registry, exports its tree to results and resets.
func fanOut(
	ctx context.Context,
	stage string,
	n int,
	task func(*scopetimer.Local, *rand.Rand) error,
	registry *scopetimer.Registry,
	results *scopetimer.Collection,
) error {
	g, _ := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", stage, i)
		seed := int64(len(stage)*1000 + i)

		g.Go(func() error {
			l := registry.Local(id)
			rng := rand.New(rand.NewSource(seed))

			if err := task(l, rng); err != nil {
				return fmt.Errorf("worker %s: %w", id, err)
			}

			results.Add(id, l.Snapshot())
			l.Reset()
			registry.Drop(id)
			return nil
		})
	}
	return g.Wait()
}

func sleepBetween(rng *rand.Rand, lo, hi time.Duration) {
	d := lo
	if hi > lo {
		d += time.Duration(rng.Int63n(int64(hi - lo)))
	}
	time.Sleep(d)
}

func printMerged(roots []*scopetimer.NodeSnapshot, format string, opts scopetimer.SummaryOptions) error {
	switch format {
	case "tree":
		return scopetimer.SummarizeSnapshots(os.Stdout, roots, opts)
	case "table":
		scopetimer.PrintSnapshotTable(os.Stdout, roots, opts)
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(roots)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(roots); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func serveMetrics(addr string, results *scopetimer.Collection) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(promexport.NewCollector("scopebench", results))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()
	return srv
}
