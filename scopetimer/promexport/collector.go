// Package promexport exposes exported scopetimer trees as Prometheus metrics.
package promexport

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onegii/go-scopetimer/scopetimer"
)

// Source provides the trees to export. [*scopetimer.Collection] satisfies it.
type Source interface {
	Merged() []*scopetimer.NodeSnapshot
}

// Collector is a prometheus.Collector reading a Source on every scrape.
// Each node becomes one series per metric, labelled by its full name path:
// names joined by "/", with a "/" or `\` inside a name escaped by a backslash.
type Collector struct {
	source Source

	seconds *prometheus.Desc
	calls   *prometheus.Desc
	maxSec  *prometheus.Desc
	open    *prometheus.Desc
}

// NewCollector returns a collector for src whose metric names start with
// namespace (default "scopetimer").
func NewCollector(namespace string, src Source) *Collector {
	if namespace == "" {
		namespace = "scopetimer"
	}
	labels := []string{"path"}

	return &Collector{
		source: src,
		seconds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scope", "seconds_total"),
			"Summed time of closed records of the scope.",
			labels, nil),
		calls: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scope", "calls_total"),
			"Number of closed records of the scope.",
			labels, nil),
		maxSec: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scope", "seconds_max"),
			"Longest closed record of the scope.",
			labels, nil),
		open: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scope", "open"),
			"1 if the scope had an unfinished record when exported.",
			labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.seconds
	ch <- c.calls
	ch <- c.maxSec
	ch <- c.open
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, r := range c.source.Merged() {
		c.collect(ch, r, "")
	}
}

// collect emits the series of n and its subtree; prefix is the parent path
// followed by "/", empty for roots.
func (c *Collector) collect(ch chan<- prometheus.Metric, n *scopetimer.NodeSnapshot, prefix string) {
	path := prefix + pathEscaper.Replace(n.Name)

	open := 0.0
	if n.Open {
		open = 1
	}

	ch <- prometheus.MustNewConstMetric(c.seconds, prometheus.CounterValue, n.Stats.Total, path)
	ch <- prometheus.MustNewConstMetric(c.calls, prometheus.CounterValue, float64(n.Calls), path)
	ch <- prometheus.MustNewConstMetric(c.maxSec, prometheus.GaugeValue, n.Stats.Max, path)
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, open, path)

	for _, child := range n.Children {
		c.collect(ch, child, path+"/")
	}
}

// pathEscaper keeps paths unique whatever the scope names contain.
var pathEscaper = strings.NewReplacer(`\`, `\\`, "/", `\/`)
