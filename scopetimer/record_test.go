package scopetimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Elapsed(t *testing.T) {
	start := time.Unix(100, 0)

	r := newRecord(start)
	assert.False(t, r.Closed())
	assert.Zero(t, r.Duration())
	assert.Zero(t, r.Elapsed())

	_, closed := r.End()
	assert.False(t, closed)

	r.end = start.Add(1500 * time.Millisecond)
	r.closed = true

	assert.True(t, r.Closed())
	assert.Equal(t, start, r.Start())
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
	assert.InDelta(t, 1.5, r.Elapsed(), 1e-12)
}
