package scopetimer

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Render writes the summary of the last stats pass to w.
// It returns an [*Error] wrapping [ErrNotPreprocessed] if the tree changed
// since [Local.Preprocess] ran, or if it never ran. opts.Unit and
// opts.Precision are ignored, the property of the stats pass is used.
func (l *Local) Render(w io.Writer, opts SummaryOptions) error {
	roots, prop, err := l.finalized("summary")
	if err != nil {
		return err
	}
	return writeSummary(w, roots, prop, opts)
}

// Summarize runs the stats pass and writes the summary to w.
func (l *Local) Summarize(w io.Writer, opts SummaryOptions) error {
	l.Preprocess(opts.Unit, opts.Precision)
	return l.Render(w, opts)
}

// Print is [Local.Summarize] to stdout with [DefaultSummaryOptions].
func (l *Local) Print() error {
	return l.Summarize(os.Stdout, DefaultSummaryOptions())
}

// SaveText writes a colorless summary with blank dividers to the file path.
func (l *Local) SaveText(path string, opts SummaryOptions) error {
	opts.Color = false
	opts.Divider = DividerBlank

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}

	if err := l.Summarize(f, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close summary file: %w", err)
	}
	return nil
}

// SaveHTML writes the summary as a standalone HTML document to the file path.
func (l *Local) SaveHTML(path string, opts SummaryOptions) error {
	opts.Color = false
	opts.Divider = DividerBlank

	var b bytes.Buffer
	if err := l.Summarize(&b, opts); err != nil {
		return err
	}

	var page bytes.Buffer
	if err := writeHTML(&page, b.String()); err != nil {
		return fmt.Errorf("render html summary: %w", err)
	}
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html summary: %w", err)
	}
	return nil
}

// PrintTable runs the stats pass and writes every node as a table row to w.
func (l *Local) PrintTable(w io.Writer, opts SummaryOptions) error {
	l.Preprocess(opts.Unit, opts.Precision)

	roots, prop, err := l.finalized("table")
	if err != nil {
		return err
	}
	writeTable(w, roots, prop, opts.Color)
	return nil
}

// finalized returns snapshots of the roots and the property of the last stats
// pass, provided it is still current.
func (l *Local) finalized(what string) ([]*NodeSnapshot, TimeProperty, error) {
	if l.property == nil {
		return nil, TimeProperty{}, newNotPreprocessedError(what)
	}

	roots := make([]*NodeSnapshot, 0, len(l.roots))
	for _, r := range l.roots {
		s, err := snapshotNode(r)
		if err != nil {
			return nil, TimeProperty{}, err
		}
		roots = append(roots, s)
	}
	return roots, *l.property, nil
}

// SummarizeSnapshots writes the summary of exported trees, for instance the
// [Merge] of several workers, to w.
func SummarizeSnapshots(w io.Writer, roots []*NodeSnapshot, opts SummaryOptions) error {
	return writeSummary(w, roots, snapshotsProperty(roots, opts), opts)
}

// PrintSnapshotTable writes every node of exported trees as a table row to w.
func PrintSnapshotTable(w io.Writer, roots []*NodeSnapshot, opts SummaryOptions) {
	writeTable(w, roots, snapshotsProperty(roots, opts), opts.Color)
}

func snapshotsProperty(roots []*NodeSnapshot, opts SummaryOptions) TimeProperty {
	worst := 0.0
	for _, r := range roots {
		if r.Stats.Total > worst {
			worst = r.Stats.Total
		}
	}
	return InferTimeProperty(worst, opts.Unit, opts.Precision)
}
