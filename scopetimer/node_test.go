package scopetimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_GetOrCreateBranch(t *testing.T) {
	root := NewNode("root", nil)

	a := root.GetOrCreateBranch("a")
	b := root.GetOrCreateBranch("b")

	assert.Same(t, a, root.GetOrCreateBranch("a"))
	assert.NotSame(t, a, b)
	assert.Equal(t, 1, a.Level())
	assert.Same(t, root, a.Parent())
	assert.True(t, root.IsRoot())
	assert.False(t, a.IsRoot())

	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "a", children[0].Name())
	assert.Equal(t, "b", children[1].Name())

	c, ok := root.Child("b")
	assert.True(t, ok)
	assert.Same(t, b, c)
	_, ok = root.Child("c")
	assert.False(t, ok)
}

func TestNode_NoCalls(t *testing.T) {
	n := NewNode("idle", nil)

	assert.Equal(t, 0, n.Calls())
	assert.Equal(t, Stats{}, n.Stats())
	assert.False(t, n.HasOpenRecord())
	assert.Empty(t, n.OpenNodes())
}

func TestNode_Statistics(t *testing.T) {
	clock := newFakeClock()
	n := NewNode("work", clock.Now)

	for _, d := range []time.Duration{1 * time.Second, 3 * time.Second} {
		n.BeginRecord()
		clock.Advance(d)
		n.EndRecord()
	}

	assert.Equal(t, 2, n.Calls())
	assert.InDelta(t, 4.0, n.TotalTime(), 1e-9)
	assert.InDelta(t, 1.0, n.MinTime(), 1e-9)
	assert.InDelta(t, 3.0, n.MaxTime(), 1e-9)
	assert.InDelta(t, 2.0, n.AvgTime(), 1e-9)
	assert.InDelta(t, 1.0, n.VarTime(), 1e-9)
}

func TestNode_SingleCallHasNoVariance(t *testing.T) {
	clock := newFakeClock()
	n := NewNode("once", clock.Now)

	n.BeginRecord()
	clock.Advance(250 * time.Millisecond)
	n.EndRecord()

	s := n.Stats()
	assert.InDelta(t, 0.25, s.Total, 1e-9)
	assert.Equal(t, s.Min, s.Max)
	assert.Zero(t, s.Var)
}

func TestNode_OpenRecordExcluded(t *testing.T) {
	clock := newFakeClock()
	n := NewNode("loop", clock.Now)

	n.BeginRecord()
	clock.Advance(time.Second)
	n.EndRecord()

	n.BeginRecord()
	clock.Advance(time.Hour)

	assert.True(t, n.HasOpenRecord())
	assert.Equal(t, 1, n.Calls())
	assert.Len(t, n.Records(), 2)
	assert.InDelta(t, 1.0, n.TotalTime(), 1e-9)
}

func TestNode_EndRecordWithoutOpen(t *testing.T) {
	n := NewNode("n", nil)

	n.EndRecord()
	assert.Equal(t, 0, n.Calls())
	assert.Empty(t, n.Records())
}

func TestNode_OpenNodesPreOrder(t *testing.T) {
	root := NewNode("root", nil)
	a := root.GetOrCreateBranch("a")
	a1 := a.GetOrCreateBranch("a1")
	b := root.GetOrCreateBranch("b")

	root.BeginRecord()
	a.BeginRecord()
	a.EndRecord()
	a1.BeginRecord()
	b.BeginRecord()

	open := root.OpenNodes()
	require.Len(t, open, 3)
	assert.Same(t, root, open[0])
	assert.Same(t, a1, open[1])
	assert.Same(t, b, open[2])
}

func TestNode_StatsCache(t *testing.T) {
	clock := newFakeClock()
	n := NewNode("n", clock.Now)

	n.BeginRecord()
	clock.Advance(time.Second)
	n.EndRecord()
	assert.False(t, n.Preprocessed())

	buildStatsRecursive(n)
	assert.True(t, n.Preprocessed())
	assert.InDelta(t, 1.0, n.TotalTime(), 1e-9)

	n.BeginRecord()
	assert.False(t, n.Preprocessed())
}

func TestNode_FullName(t *testing.T) {
	root := NewNode("main", nil)
	leaf := root.GetOrCreateBranch("load").GetOrCreateBranch("parse")

	assert.Equal(t, "main", root.FullName())
	assert.Equal(t, "main -> load -> parse", leaf.FullName())
}

func TestNode_String(t *testing.T) {
	root := NewNode("main", nil)
	root.GetOrCreateBranch("child")

	s := root.String()
	assert.Contains(t, s, "[Node main]")
	assert.Contains(t, s, "[Node child]")
	assert.Contains(t, s, "parent: main")
}
