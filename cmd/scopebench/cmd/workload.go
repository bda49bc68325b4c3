package cmd

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/onegii/go-scopetimer/scopetimer"
)

// nestedWorkload is the overhead workload: outer x middle x inner iterations,
// each inner iteration opening two leaf scopes.
type nestedWorkload struct {
	outer, middle, inner, dim int

	rng  *rand.Rand
	a, b []float64
	sink float64
}

func newNestedWorkload(outer, middle, inner, dim int, seed int64) *nestedWorkload {
	return &nestedWorkload{
		outer:  outer,
		middle: middle,
		inner:  inner,
		dim:    dim,
		rng:    rand.New(rand.NewSource(seed)),
		a:      make([]float64, dim),
		b:      make([]float64, dim),
	}
}

// scopes returns the number of scopes one instrumented run opens.
func (w *nestedWorkload) scopes() int {
	return 2 + w.outer*(1+w.middle*(1+2*w.inner))
}

func (w *nestedWorkload) sin(x float64) {
	w.sink += math.Sin(x)
}

func (w *nestedWorkload) dot() {
	for i := range w.a {
		w.a[i] = w.rng.Float64()
		w.b[i] = w.rng.Float64()
	}
	s := 0.0
	for i := range w.a {
		s += w.a[i] * w.b[i]
	}
	w.sink += s
}

// runNative runs the workload without any instrumentation call.
func (w *nestedWorkload) runNative() {
	for i := 0; i < w.outer; i++ {
		base := w.rng.Float64()
		for j := 0; j < w.middle; j++ {
			for k := 0; k < w.inner; k++ {
				w.sin(base + float64(k))
				w.dot()
			}
		}
	}
}

// runInstrumented runs the workload inside scopes of l.
func (w *nestedWorkload) runInstrumented(l *scopetimer.Local) error {
	sin := scopetimer.ProfileFunc(l, "inner.sin", w.sin)
	dot := scopetimer.ProfileFunc(l, "inner.dot", w.dot)

	return l.Time("pipeline", func() error {
		return l.Time("compute_many", func() error {
			for i := 0; i < w.outer; i++ {
				l.Begin("outer")
				base := w.rng.Float64()
				for j := 0; j < w.middle; j++ {
					l.Begin("middle")
					for k := 0; k < w.inner; k++ {
						sin(base + float64(k))
						dot()
					}
					if err := l.End("middle"); err != nil {
						return err
					}
				}
				if err := l.End("outer"); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// runPipeline builds the pipeline tree used by the memory workload:
// three stages and predictions sibling scopes under compute.
func runPipeline(l *scopetimer.Local, iterations, predictions int) {
	names := make([]string, predictions)
	for j := range names {
		names[j] = fmt.Sprintf("prediction_%d", j)
	}

	for i := 0; i < iterations; i++ {
		run := l.Profile("pipeline_run")

		pre := l.Profile("preprocess")
		l.Profile("load_data").End()
		l.Profile("clean_data").End()
		pre.End()

		comp := l.Profile("compute")
		l.Profile("feature_extraction").End()
		for _, name := range names {
			l.Profile(name).End()
		}
		comp.End()

		post := l.Profile("postprocess")
		l.Profile("save_results").End()
		post.End()

		run.End()
	}
}
