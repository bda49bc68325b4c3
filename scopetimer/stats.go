package scopetimer

import (
	"bytes"
	"fmt"
	"math"
)

// Stats holds the aggregate statistics of a node's closed records.
// Every field is expressed in seconds; Var is the population variance.
type Stats struct {
	Total float64 `json:"total" yaml:"total"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Avg   float64 `json:"avg" yaml:"avg"`
	Var   float64 `json:"var" yaml:"var"`
}

func (s Stats) String() string {
	var b bytes.Buffer

	b.WriteString("[statistics]\n")
	b.WriteString(fmt.Sprintf("total: %g\n", s.Total))
	b.WriteString(fmt.Sprintf("min: %g\n", s.Min))
	b.WriteString(fmt.Sprintf("max: %g\n", s.Max))
	b.WriteString(fmt.Sprintf("avg: %g\n", s.Avg))
	b.WriteString(fmt.Sprintf("var: %g\n", s.Var))

	return b.String()
}

// computeStats builds Stats over closed, the closed prefix of a node's records.
func computeStats(closed []Record) Stats {
	n := len(closed)
	if n == 0 {
		return Stats{}
	}

	s := Stats{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}
	for _, r := range closed {
		e := r.Elapsed()
		s.Total += e
		if e < s.Min {
			s.Min = e
		}
		if e > s.Max {
			s.Max = e
		}
	}
	s.Avg = s.Total / float64(n)

	if n < 2 {
		return s
	}
	for _, r := range closed {
		d := r.Elapsed() - s.Avg
		s.Var += d * d
	}
	s.Var /= float64(n)

	return s
}

// mergeStats combines the statistics of two disjoint sets of na and nb
// intervals.
func mergeStats(a Stats, na int, b Stats, nb int) Stats {
	if na == 0 {
		return b
	}
	if nb == 0 {
		return a
	}

	n := float64(na + nb)
	fa, fb := float64(na), float64(nb)

	m := Stats{
		Total: a.Total + b.Total,
		Min:   math.Min(a.Min, b.Min),
		Max:   math.Max(a.Max, b.Max),
	}
	m.Avg = m.Total / n

	delta := b.Avg - a.Avg
	m2 := a.Var*fa + b.Var*fb + delta*delta*fa*fb/n
	m.Var = m2 / n

	return m
}

// buildStatsRecursive runs the stats pass over n and its whole subtree.
func buildStatsRecursive(n *Node) {
	n.stats = computeStats(n.records[:n.ncall])
	n.valid = true

	for _, c := range n.children {
		buildStatsRecursive(c)
	}
}
