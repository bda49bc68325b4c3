package scopetimer

import (
	"time"

	"golang.org/x/exp/slog"
)

// # Local
//
// Represents the timing context of one goroutine: the root nodes of its
// timing tree and the innermost open scope.
// A Local is not safe for concurrent use and needs no locking: it must only be
// used by the goroutine that owns it. Results travel to other goroutines as
// snapshots (see [Local.Snapshot] and [Collection]).
// Its zero value has no meaning, a Local is created by [New], [Registry.Local]
// or [Ensure].
type Local struct {
	roots []*Node
	index map[string]*Node

	// active is the innermost open node, nil when idle.
	active *Node

	// property is set by Preprocess and cleared by any mutation.
	property *TimeProperty

	now func() time.Time
}

// Option configures a [Local].
type Option func(*Local)

// WithClock makes the Local read time from now instead of [time.Now].
func WithClock(now func() time.Time) Option {
	return func(l *Local) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns an empty timing context.
func New(opts ...Option) *Local {
	l := &Local{
		index: make(map[string]*Node),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Begin opens the scope name inside the innermost open scope, or as a root
// scope when none is open. Every Begin must be paired with an [Local.End] of
// the same name.
func (l *Local) Begin(name string) {
	if !enabled.Load() {
		return
	}

	var node *Node
	if l.active == nil {
		node = l.index[name]
		if node == nil {
			node = newNode(name, 0, nil, l.now)
			l.index[name] = node
			l.roots = append(l.roots, node)
		}
	} else {
		node = l.active.GetOrCreateBranch(name)
	}

	l.active = node
	l.property = nil
	node.BeginRecord()
}

// End closes the innermost open scope, which must be named name.
// Scopes close in the exact reverse order of opening; any other call returns an
// [*Error] wrapping [ErrScopeMismatch] and leaves the tree untouched.
func (l *Local) End(name string) error {
	if !enabled.Load() {
		return nil
	}

	a := l.active
	if a == nil {
		return newIdleEndError(name)
	}
	if a.name != name {
		return newMismatchError(name, a.name)
	}

	a.EndRecord()
	l.active = a.parent
	l.property = nil

	return nil
}

// Active returns the innermost open node, nil when idle.
func (l *Local) Active() *Node {
	return l.active
}

// Roots returns the root nodes in creation order.
func (l *Local) Roots() []*Node {
	out := make([]*Node, len(l.roots))
	copy(out, l.roots)
	return out
}

// Root returns the root node named name, if any.
func (l *Local) Root(name string) (*Node, bool) {
	n, ok := l.index[name]
	return n, ok
}

// OpenNodes returns every node with an open record, root by root in
// depth-first pre-order.
func (l *Local) OpenNodes() []*Node {
	var open []*Node
	for _, r := range l.roots {
		open = r.collectOpenNodes(open)
	}
	return open
}

// Reset drops every node of l and returns it to idle.
// Open scopes are discarded with the rest of the tree.
func (l *Local) Reset() {
	if len(l.roots) > 0 {
		logger.Debug("resetting timing context", slog.Int("roots", len(l.roots)))
	}
	l.roots = nil
	l.index = make(map[string]*Node)
	l.active = nil
	l.property = nil
}

// Preprocess runs the stats pass over every root and infers the display
// property from the worst root total. It must run before [Local.Render];
// [Local.Summarize], [Local.SaveText] and [Local.SaveHTML] call it themselves.
func (l *Local) Preprocess(unit Unit, precision int) TimeProperty {
	worst := 0.0
	for _, r := range l.roots {
		buildStatsRecursive(r)
		if r.stats.Total > worst {
			worst = r.stats.Total
		}
	}

	p := InferTimeProperty(worst, unit, precision)
	l.property = &p

	return p
}

// TimeProperty returns the display property of the last stats pass, if it is
// still current.
func (l *Local) TimeProperty() (TimeProperty, bool) {
	if l.property == nil {
		return TimeProperty{}, false
	}
	return *l.property, true
}
