package scopetimer

import (
	"bufio"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/rodaine/table"
	"golang.org/x/exp/slog"
)

// Divider selects what separates root trees in a summary.
type Divider int

const (
	DividerRule Divider = iota
	DividerBlank
)

// ParseDivider parses "rule" or "blank".
func ParseDivider(s string) (Divider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rule":
		return DividerRule, nil
	case "blank":
		return DividerBlank, nil
	}
	return DividerRule, fmt.Errorf("unknown divider %q", s)
}

// SummaryOptions controls how a summary is rendered.
type SummaryOptions struct {
	Unit      Unit
	Precision int
	Divider   Divider
	// Verbose appends min, max, avg and var to every node.
	Verbose bool
	// Color enables ANSI colors.
	Color bool
}

// DefaultSummaryOptions returns automatic unit and precision, rule dividers
// and colors when stdout supports them.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		Unit:      UnitAuto,
		Precision: PrecisionAuto,
		Divider:   DividerRule,
		Color:     !color.NoColor,
	}
}

const (
	summaryTitle = "ScopeTimer Summary"
	ruleWidth    = 60
)

var titleStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

type palette struct {
	name   *color.Color
	guide  *color.Color
	warn   *color.Color
	footer *color.Color
	rule   *color.Color
	header *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		name:   color.New(color.FgGreen),
		guide:  color.New(color.FgHiBlue),
		warn:   color.New(color.FgYellow),
		footer: color.New(color.FgHiRed),
		rule:   color.New(color.FgHiBlack),
		header: color.New(color.FgGreen, color.Underline),
	}
	for _, c := range []*color.Color{p.name, p.guide, p.warn, p.footer, p.rule, p.header} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// writeSummary renders roots, whose stats are final, in the layout:
// title, unfinished scope warnings, one tree per root, overall time.
func writeSummary(w io.Writer, roots []*NodeSnapshot, prop TimeProperty, opts SummaryOptions) error {
	bw := bufio.NewWriter(w)
	pal := newPalette(opts.Color)

	divider := func() {
		if opts.Divider == DividerRule {
			pal.rule.Fprintln(bw, strings.Repeat("─", ruleWidth))
			return
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, titleStyle.Render(summaryTitle))

	overall := 0.0
	var unclosed []string
	for _, r := range roots {
		overall += r.Stats.Total
		r.walk("", func(n *NodeSnapshot, path string) {
			if !n.Open {
				return
			}
			unclosed = append(unclosed, n.Name)
			logger.Warn("unfinished scope excluded from totals", slog.String("scope", path))
		})
	}

	if len(unclosed) > 0 {
		pal.warn.Fprintf(bw, "WARNING: %d unfinished scope(s) detected. They are excluded from totals.\n", len(unclosed))
		for _, name := range unclosed {
			pal.warn.Fprintf(bw, "- unclosed scope: '%s'\n", name)
		}
		divider()
	}

	tr := &treeRenderer{w: bw, prop: prop, verbose: opts.Verbose, pal: pal}
	for _, r := range roots {
		tr.writeNode(r, nil, tr.columnsOf([]*NodeSnapshot{r}), "", "")
		divider()
	}

	if overall > 0 {
		pal.footer.Fprintf(bw, "overall_time: %s\n", prop.Format(overall))
	} else {
		pal.footer.Fprintln(bw, "overall_time: N/A (no completed root scopes)")
	}

	return bw.Flush()
}

type treeRenderer struct {
	w       io.Writer
	prop    TimeProperty
	verbose bool
	pal     palette
}

// columns holds the widths shared by sibling labels.
type columns struct {
	name  int
	time  int
	calls int
}

func (t *treeRenderer) columnsOf(nodes []*NodeSnapshot) columns {
	var c columns
	for _, n := range nodes {
		c.name = max(c.name, runewidth.StringWidth(n.Name))
		c.time = max(c.time, len(t.prop.Format(n.Stats.Total)))
		c.calls = max(c.calls, len(strconv.Itoa(n.Calls)))
	}
	return c
}

func (t *treeRenderer) writeNode(n, parent *NodeSnapshot, cols columns, linePrefix, childPrefix string) {
	fmt.Fprintln(t.w, t.pal.guide.Sprint(linePrefix)+t.label(n, parent, cols))

	if len(n.Children) == 0 {
		return
	}

	childCols := t.columnsOf(n.Children)
	for i, c := range n.Children {
		branch, ext := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, ext = "└── ", "    "
		}
		t.writeNode(c, n, childCols, childPrefix+branch, childPrefix+ext)
	}
}

func (t *treeRenderer) label(n, parent *NodeSnapshot, cols columns) string {
	var b strings.Builder

	// +3: brackets and spacing
	b.WriteString(t.pal.name.Sprint(runewidth.FillRight("["+n.Name+"]", cols.name+3)))
	b.WriteString(runewidth.FillLeft(t.prop.Format(n.Stats.Total), cols.time))
	b.WriteString(" / ")
	b.WriteString(runewidth.FillLeft(strconv.Itoa(n.Calls), cols.calls))
	b.WriteString("x ")

	if parent != nil {
		if parent.Stats.Total > 0 {
			pct := math.Round(n.Stats.Total / parent.Stats.Total * 100)
			b.WriteString(fmt.Sprintf("(%d%%) ", int(pct)))
		} else {
			b.WriteString("(--%) ")
		}
	}

	if t.verbose {
		// var is printed with the scale and suffix of the time columns
		b.WriteString(fmt.Sprintf(" [min=%s, max=%s, avg=%s, var=%s]",
			t.prop.Format(n.Stats.Min),
			t.prop.Format(n.Stats.Max),
			t.prop.Format(n.Stats.Avg),
			t.prop.Format(n.Stats.Var)))
	}

	return strings.TrimRight(b.String(), " ")
}

// writeTable prints every node of roots as one row with its full name.
func writeTable(w io.Writer, roots []*NodeSnapshot, prop TimeProperty, useColor bool) {
	tbl := table.New(
		"scope",
		"total",
		"calls",
		"min",
		"max",
		"avg",
		"var",
	).WithWriter(w)
	if useColor {
		tbl.WithHeaderFormatter(newPalette(true).header.SprintfFunc())
	}

	for _, r := range roots {
		r.walk("", func(n *NodeSnapshot, path string) {
			if n.Open {
				path += " (open)"
			}
			tbl.AddRow(
				path,
				prop.Format(n.Stats.Total),
				n.Calls,
				prop.Format(n.Stats.Min),
				prop.Format(n.Stats.Max),
				prop.Format(n.Stats.Avg),
				prop.Format(n.Stats.Var),
			)
		})
	}
	tbl.Print()
}

var htmlPage = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { background: #ffffff; color: #1e1e1e; }
pre { font-family: Menlo, "DejaVu Sans Mono", Consolas, monospace; font-size: 13px; line-height: 1.4; }
</style>
</head>
<body>
<pre><code>{{.Body}}</code></pre>
</body>
</html>
`))

// writeHTML wraps a colorless summary in a standalone HTML document.
func writeHTML(w io.Writer, summary string) error {
	return htmlPage.Execute(w, struct {
		Title string
		Body  string
	}{
		Title: summaryTitle,
		Body:  summary,
	})
}
