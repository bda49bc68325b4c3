package scopetimer

import "time"

// Record is a single timed interval of a scope.
// It is open from its creation by [Node.BeginRecord] until the matching
// [Node.EndRecord] closes it; a closed record never changes again.
type Record struct {
	start  time.Time
	end    time.Time
	closed bool
}

func newRecord(start time.Time) Record {
	return Record{start: start}
}

// Start returns the instant the record was opened.
func (r Record) Start() time.Time {
	return r.start
}

// End returns the instant the record was closed and whether it is closed.
func (r Record) End() (time.Time, bool) {
	return r.end, r.closed
}

// Closed reports whether the record has an end instant.
func (r Record) Closed() bool {
	return r.closed
}

// Duration is the length of a closed record, 0 while open.
func (r Record) Duration() time.Duration {
	if !r.closed {
		return 0
	}
	return r.end.Sub(r.start)
}

// Elapsed is [Record.Duration] in seconds.
func (r Record) Elapsed() float64 {
	return r.Duration().Seconds()
}
