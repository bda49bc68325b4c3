package scopetimer

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// # Node
//
// Represents one name path of the timing tree of a [Local]. A node owns the
// records of every visit of its scope and the child nodes opened inside it,
// kept in creation order.
// A node is only ever touched by the goroutine owning its Local; it must not be
// read from another goroutine, use [Local.Snapshot] for that.
// Its zero value has no meaning. Nodes are created by a Local or by [NewNode].
type Node struct {
	name  string
	level int

	// parent is a non-owning back reference, nil for roots.
	parent *Node

	children []*Node
	index    map[string]*Node

	records []Record
	// ncall is the number of closed records; records[ncall:] is open.
	ncall int

	stats Stats
	valid bool

	now func() time.Time
}

// NewNode returns a detached root node reading time from now, or from
// [time.Now] if now is nil.
func NewNode(name string, now func() time.Time) *Node {
	if now == nil {
		now = time.Now
	}
	return newNode(name, 0, nil, now)
}

func newNode(name string, level int, parent *Node, now func() time.Time) *Node {
	return &Node{
		name:   name,
		level:  level,
		parent: parent,
		now:    now,
	}
}

// Name returns the scope name of n.
func (n *Node) Name() string {
	return n.name
}

// Level returns the depth of n, 0 for roots.
func (n *Node) Level() int {
	return n.level
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Parent returns the parent of n, nil for roots.
func (n *Node) Parent() *Node {
	return n.parent
}

// Calls returns the number of closed records of n.
func (n *Node) Calls() int {
	return n.ncall
}

// Records returns a copy of every record of n, the open one included.
func (n *Node) Records() []Record {
	out := make([]Record, len(n.records))
	copy(out, n.records)
	return out
}

// Children returns the child nodes of n in creation order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the child of n named name, if any.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.index[name]
	return c, ok
}

// BeginRecord opens a new record starting now.
// The begin/end protocol of [Local] guarantees at most one open record.
func (n *Node) BeginRecord() {
	n.records = append(n.records, newRecord(n.now()))
	n.valid = false
}

// EndRecord closes the open record of n. It does nothing if no record is open.
func (n *Node) EndRecord() {
	if n.ncall >= len(n.records) {
		return
	}
	r := &n.records[n.ncall]
	r.end = n.now()
	r.closed = true
	n.ncall++
	n.valid = false
}

// GetOrCreateBranch returns the child of n named name, creating it on first
// request. The same name always yields the same node.
func (n *Node) GetOrCreateBranch(name string) *Node {
	if c, ok := n.index[name]; ok {
		return c
	}

	c := newNode(name, n.level+1, n, n.now)
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	n.index[name] = c
	n.children = append(n.children, c)

	return c
}

// HasOpenRecord reports whether n has a record not closed yet.
func (n *Node) HasOpenRecord() bool {
	return n.ncall < len(n.records)
}

// OpenNodes returns every node of the subtree rooted at n, n included, that has
// an open record, in depth-first pre-order.
func (n *Node) OpenNodes() []*Node {
	return n.collectOpenNodes(nil)
}

func (n *Node) collectOpenNodes(acc []*Node) []*Node {
	if n.HasOpenRecord() {
		acc = append(acc, n)
	}
	for _, c := range n.children {
		acc = c.collectOpenNodes(acc)
	}
	return acc
}

// Preprocessed reports whether the cached statistics of n are current.
func (n *Node) Preprocessed() bool {
	return n.valid
}

// Stats returns the statistics of the closed records of n.
// Cached values from the last stats pass are used when still current,
// otherwise they are computed on demand. Open records never contribute.
func (n *Node) Stats() Stats {
	if n.valid {
		return n.stats
	}
	return computeStats(n.records[:n.ncall])
}

// TotalTime returns the summed length of closed records in seconds.
func (n *Node) TotalTime() float64 { return n.Stats().Total }

// MinTime returns the shortest closed record in seconds.
func (n *Node) MinTime() float64 { return n.Stats().Min }

// MaxTime returns the longest closed record in seconds.
func (n *Node) MaxTime() float64 { return n.Stats().Max }

// AvgTime returns the mean closed record length in seconds.
func (n *Node) AvgTime() float64 { return n.Stats().Avg }

// VarTime returns the population variance of closed record lengths.
func (n *Node) VarTime() float64 { return n.Stats().Var }

// FullName returns the names from the root down to n joined by " -> ".
func (n *Node) FullName() string {
	names := []string{n.name}

	for p := n.parent; p != nil; p = p.parent {
		names = append(names, p.name)
	}

	var b bytes.Buffer
	for i := len(names) - 1; i > 0; i-- {
		b.WriteString(names[i])
		b.WriteString(" -> ")
	}
	b.WriteString(names[0])
	return b.String()
}

func (n *Node) String() string {
	b := bytes.NewBufferString("")

	b.WriteString(fmt.Sprintf("[Node %s]\n", n.name))
	if n.parent != nil {
		b.WriteString(fmt.Sprintf("parent: %s\n", n.parent.name))
	}
	b.WriteString(fmt.Sprintf("level: %d\n", n.level))
	b.WriteString(fmt.Sprintf("calls: %d\n", n.ncall))
	b.WriteString(fmt.Sprintf("open: %t\n", n.HasOpenRecord()))

	s := strings.Replace("\t"+n.Stats().String(), "\n", "\n\t", -1)
	s = s[:len(s)-1]
	b.WriteString(s)

	if len(n.children) > 0 {
		b.WriteString("children:\n")
		for _, c := range n.children {
			s := strings.Replace("\t"+c.String(), "\n", "\n\t", -1)
			s = s[:len(s)-1]
			b.WriteString(s)
		}
	}

	return b.String()
}

// walk calls fn on n and all its descendants in depth-first pre-order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
