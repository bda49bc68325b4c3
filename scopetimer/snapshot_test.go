package scopetimer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// buildTree times main{load x2, parse} with a fake clock and leaves run open.
func buildTree(t *testing.T) *Local {
	t.Helper()

	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	l.Begin("main")
	for i := 0; i < 2; i++ {
		l.Begin("load")
		clock.Advance(time.Duration(i+1) * 100 * time.Millisecond)
		require.NoError(t, l.End("load"))
	}
	l.Begin("parse")
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, l.End("parse"))
	require.NoError(t, l.End("main"))

	l.Begin("run")
	clock.Advance(time.Second)

	return l
}

func TestLocal_Snapshot(t *testing.T) {
	l := buildTree(t)

	roots := l.Snapshot()
	require.Len(t, roots, 2)

	main := roots[0]
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, 1, main.Calls)
	assert.False(t, main.Open)
	assert.InDelta(t, 0.5, main.Stats.Total, 1e-9)

	load, ok := main.Child("load")
	require.True(t, ok)
	assert.Equal(t, 2, load.Calls)
	assert.InDelta(t, 0.15, load.Stats.Avg, 1e-9)
	assert.InDelta(t, 0.0025, load.Stats.Var, 1e-9)

	run := roots[1]
	assert.True(t, run.Open)
	assert.Equal(t, 0, run.Calls)
	assert.Equal(t, []*NodeSnapshot{run}, run.OpenNodes())
	assert.Empty(t, main.OpenNodes())

	// later mutation does not reach the snapshot
	l.Begin("extra")
	assert.Len(t, run.Children, 0)
}

func TestNodeSnapshot_Encoding(t *testing.T) {
	roots := buildTree(t).Snapshot()

	b, err := json.Marshal(roots)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"main"`)
	assert.Contains(t, string(b), `"open":true`)

	y, err := yaml.Marshal(roots)
	require.NoError(t, err)
	assert.Contains(t, string(y), "name: load")
}

func TestMerge(t *testing.T) {
	a := buildTree(t).Snapshot()
	b := buildTree(t).Snapshot()

	extra := New()
	extra.Begin("other")
	require.NoError(t, extra.End("other"))

	merged := Merge(a, b, extra.Snapshot())
	require.Len(t, merged, 3)
	assert.Equal(t, "main", merged[0].Name)
	assert.Equal(t, "run", merged[1].Name)
	assert.Equal(t, "other", merged[2].Name)

	main := merged[0]
	assert.Equal(t, 2, main.Calls)
	assert.InDelta(t, 1.0, main.Stats.Total, 1e-9)

	load, ok := main.Child("load")
	require.True(t, ok)
	assert.Equal(t, 4, load.Calls)
	assert.InDelta(t, 0.6, load.Stats.Total, 1e-9)
	assert.InDelta(t, 0.1, load.Stats.Min, 1e-9)
	assert.InDelta(t, 0.2, load.Stats.Max, 1e-9)
	assert.InDelta(t, 0.0025, load.Stats.Var, 1e-9)

	assert.True(t, merged[1].Open)

	// inputs are untouched
	assert.Equal(t, 1, a[0].Calls)
	assert.Equal(t, 2, a[0].Children[0].Calls)
}

func TestCollection(t *testing.T) {
	c := &Collection{}
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Merged())

	c.Add("w1", buildTree(t).Snapshot())
	c.Add("w2", buildTree(t).Snapshot())

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "w1", all[0].Worker)
	assert.Equal(t, "w2", all[1].Worker)

	merged := c.Merged()
	require.Len(t, merged, 2)
	assert.Equal(t, 2, merged[0].Calls)
}
