package scopetimer

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// SCOPE_TIMER_ENABLE from the environment must not leak into the tests
	Enable()
	os.Exit(m.Run())
}

// fakeClock is a manually advanced clock for exact durations.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// disableForTest disables timing until the end of the test.
func disableForTest(t *testing.T) {
	t.Helper()
	Disable()
	t.Cleanup(Enable)
}

func TestParseEnable(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{"FALSE", false},
		{" off ", false},
		{"no", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseEnable(tt.value))
		})
	}
}

func TestEnableDisable(t *testing.T) {
	assert.True(t, Enabled())

	Disable()
	assert.False(t, Enabled())
	Disable()
	assert.False(t, Enabled())

	Enable()
	assert.True(t, Enabled())
}
