// Package scopetimer provides low-overhead hierarchical timing of named code
// regions.
//
// Callers open and close scopes on a [Local], the timing context owned by a
// single goroutine. Nested scopes build a call tree whose nodes aggregate
// every interval recorded at the same name path:
//
//	 main
//	  ├ load
//	  └ compute
//	     ├ step  (x1000)
//	     └ flush
//
// A node is created once per name path and reused on every later visit, so
// statistics (total, min, max, avg, variance, calls) accumulate across loop
// iterations. Locals are never shared: a goroutine either owns one created with
// [New], asks a [Registry] for the one bound to its worker identity, or carries
// it through a context.Context (see [NewContext]).
//
// The only process-wide state is the enable flag ([Enable], [Disable]). Its
// initial value comes from the SCOPE_TIMER_ENABLE environment variable.
package scopetimer

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// EnvEnable is the environment variable read at initialization to set the
// initial state of the enable flag. Absent means enabled.
const EnvEnable = "SCOPE_TIMER_ENABLE"

func init() {
	logLevel = new(slog.LevelVar)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(h)

	enabled.Store(parseEnable(os.Getenv(EnvEnable)))
}

var (
	logger   *slog.Logger
	logLevel *slog.LevelVar

	// enabled is read on every Begin/End without taking enableMu.
	enabled  atomic.Bool
	enableMu sync.Mutex
)

func parseEnable(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

// SetLogger set the logger used by scopetimer.
// [SetLogLevel] will not be enforced if a custom logger is used.
func SetLogger(newlogger *slog.Logger) {
	logger = newlogger
}

// SetLogLevel sets the level for scopetimer messages unless [SetLogger] has been called.
// The default log level is the zero value of [slog.LevelVar].
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// Enable turns timing on for every goroutine.
func Enable() {
	setEnabled(true)
}

// Disable turns timing off for every goroutine. While disabled, Begin, End and
// Profile return immediately without reading the clock or allocating.
// Scopes opened before the call stay open.
func Disable() {
	setEnabled(false)
}

// Enabled reports the current state of the enable flag.
func Enabled() bool {
	return enabled.Load()
}

func setEnabled(v bool) {
	enableMu.Lock()
	defer enableMu.Unlock()

	if enabled.Load() == v {
		return
	}
	enabled.Store(v)
	logger.Debug("scopetimer state changed", slog.Bool("enabled", v))
}
