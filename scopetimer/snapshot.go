package scopetimer

import "sync"

// NodeSnapshot is a read-only deep copy of a [Node] with its statistics.
// Unlike nodes, snapshots may be handed to any goroutine.
type NodeSnapshot struct {
	Name     string          `json:"name" yaml:"name"`
	Calls    int             `json:"calls" yaml:"calls"`
	Open     bool            `json:"open,omitempty" yaml:"open,omitempty"`
	Stats    Stats           `json:"stats" yaml:"stats"`
	Children []*NodeSnapshot `json:"children,omitempty" yaml:"children,omitempty"`
}

// Snapshot runs the stats pass and returns a deep copy of every root.
func (l *Local) Snapshot() []*NodeSnapshot {
	for _, r := range l.roots {
		buildStatsRecursive(r)
	}

	out := make([]*NodeSnapshot, 0, len(l.roots))
	for _, r := range l.roots {
		s, _ := snapshotNode(r)
		out = append(out, s)
	}
	return out
}

// snapshotNode copies n, failing if the stats of a node in its subtree are
// stale.
func snapshotNode(n *Node) (*NodeSnapshot, error) {
	if !n.valid {
		return nil, newNotPreprocessedError(n.FullName())
	}

	s := &NodeSnapshot{
		Name:  n.name,
		Calls: n.ncall,
		Open:  n.HasOpenRecord(),
		Stats: n.stats,
	}
	if len(n.children) > 0 {
		s.Children = make([]*NodeSnapshot, 0, len(n.children))
	}
	for _, c := range n.children {
		cs, err := snapshotNode(c)
		if err != nil {
			return nil, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

// Child returns the child of s named name, if any.
func (s *NodeSnapshot) Child(name string) (*NodeSnapshot, bool) {
	for _, c := range s.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// OpenNodes returns every snapshot of the subtree, s included, that was open
// when taken, in depth-first pre-order.
func (s *NodeSnapshot) OpenNodes() []*NodeSnapshot {
	var open []*NodeSnapshot
	s.walk("", func(n *NodeSnapshot, _ string) {
		if n.Open {
			open = append(open, n)
		}
	})
	return open
}

// walk calls fn on s and its descendants in depth-first pre-order with the
// full name of each node.
func (s *NodeSnapshot) walk(parent string, fn func(*NodeSnapshot, string)) {
	path := s.Name
	if parent != "" {
		path = parent + " -> " + s.Name
	}
	fn(s, path)
	for _, c := range s.Children {
		c.walk(path, fn)
	}
}

func (s *NodeSnapshot) clone() *NodeSnapshot {
	c := *s
	c.Children = nil
	for _, ch := range s.Children {
		c.Children = append(c.Children, ch.clone())
	}
	return &c
}

// Merge combines trees exported by different goroutines. Roots, and children
// of merged nodes, with the same name are merged: calls and totals add up,
// min and max combine and the mean and variance are those of the union of the
// intervals. The inputs are left untouched.
func Merge(trees ...[]*NodeSnapshot) []*NodeSnapshot {
	var out []*NodeSnapshot
	for _, roots := range trees {
		out = mergeInto(out, roots)
	}
	return out
}

func mergeInto(dst, src []*NodeSnapshot) []*NodeSnapshot {
	for _, s := range src {
		var target *NodeSnapshot
		for _, d := range dst {
			if d.Name == s.Name {
				target = d
				break
			}
		}
		if target == nil {
			dst = append(dst, s.clone())
			continue
		}

		target.Stats = mergeStats(target.Stats, target.Calls, s.Stats, s.Calls)
		target.Calls += s.Calls
		target.Open = target.Open || s.Open
		target.Children = mergeInto(target.Children, s.Children)
	}
	return dst
}

// Exported is the result set one worker handed to a [Collection].
type Exported struct {
	Worker string          `json:"worker" yaml:"worker"`
	Roots  []*NodeSnapshot `json:"roots" yaml:"roots"`
}

// # Collection
//
// Represents a sink where goroutines deposit their exported timing trees,
// typically right before resetting their Local. It is safe for concurrent use.
type Collection struct {
	mu      sync.Mutex
	entries []Exported
}

// Add stores the roots exported by worker.
func (c *Collection) Add(worker string, roots []*NodeSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, Exported{Worker: worker, Roots: roots})
}

// All returns the stored result sets in arrival order.
func (c *Collection) All() []Exported {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Exported, len(c.entries))
	copy(out, c.entries)
	return out
}

// Merged returns the [Merge] of every stored result set.
func (c *Collection) Merged() []*NodeSnapshot {
	all := c.All()

	trees := make([][]*NodeSnapshot, 0, len(all))
	for _, e := range all {
		trees = append(trees, e.Roots)
	}
	return Merge(trees...)
}

// Len returns the number of stored result sets.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
