package scopetimer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Local(t *testing.T) {
	r := NewRegistry()

	a := r.Local("a")
	assert.Same(t, a, r.Local("a"))
	assert.NotSame(t, a, r.Local("b"))
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	r.Drop("a")
	assert.Equal(t, []string{"b"}, r.IDs())
	assert.NotSame(t, a, r.Local("a"))
}

func TestRegistry_Options(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(WithClock(clock.Now))

	l := r.Local("w")
	l.Begin("x")
	require.NoError(t, l.End("x"))

	n, _ := l.Root("x")
	assert.Zero(t, n.TotalTime())
}

func TestFor(t *testing.T) {
	assert.Same(t, For("process-wide"), For("process-wide"))
	defaultRegistry.Drop("process-wide")
}

// Goroutines timing identical scope names must build disjoint trees.
func TestRegistry_Isolation(t *testing.T) {
	const (
		workers = 8
		loops   = 50
	)
	r := NewRegistry()
	results := &Collection{}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		id := fmt.Sprintf("worker-%d", w)
		calls := loops + w

		wg.Add(1)
		go func() {
			defer wg.Done()

			l := r.Local(id)
			for i := 0; i < calls; i++ {
				l.Begin("task")
				l.Begin("step")
				if err := l.End("step"); err != nil {
					t.Error(err)
				}
				if err := l.End("task"); err != nil {
					t.Error(err)
				}
			}
			results.Add(id, l.Snapshot())
		}()
	}
	wg.Wait()

	require.Len(t, r.IDs(), workers)
	for w := 0; w < workers; w++ {
		l := r.Local(fmt.Sprintf("worker-%d", w))

		roots := l.Roots()
		require.Len(t, roots, 1)
		assert.Equal(t, loops+w, roots[0].Calls())

		step, ok := roots[0].Child("step")
		require.True(t, ok)
		assert.Equal(t, loops+w, step.Calls())
	}

	assert.Equal(t, workers, results.Len())

	merged := results.Merged()
	require.Len(t, merged, 1)
	want := 0
	for w := 0; w < workers; w++ {
		want += loops + w
	}
	assert.Equal(t, want, merged[0].Calls)
}

func TestRegistry_ResetLeavesOthers(t *testing.T) {
	r := NewRegistry()
	a, b := r.Local("a"), r.Local("b")

	a.Begin("x")
	require.NoError(t, a.End("x"))
	b.Begin("x")
	require.NoError(t, b.End("x"))

	a.Reset()

	assert.Empty(t, a.Roots())
	assert.Len(t, b.Roots(), 1)
}

func TestContext(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	ctx, l := Ensure(ctx)
	require.NotNil(t, l)

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, l, got)

	ctx2, l2 := Ensure(ctx)
	assert.Same(t, l, l2)
	assert.Equal(t, ctx, ctx2)

	other := New()
	got, _ = FromContext(NewContext(ctx, other))
	assert.Same(t, other, got)

	_, ok = FromContext(NewContext(context.Background(), nil))
	assert.False(t, ok)
}
