package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger holds the logger installed with SetLogger. A nil value means none
// was set and Logger falls back to the cached default.
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches the slog.Default()-derived logger so repeated Logger
// calls do not allocate. SetLogger(nil) clears it.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the package-level logger. Without SetLogger it returns a
// cached logger derived from slog.Default() with the pgbootstrap component
// attribute. Safe for concurrent use.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "pgbootstrap")
}

// SetLogger replaces the package-level logger. Passing nil restores the
// default, re-derived from slog.Default() on the next Logger call.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}

// OrDefault returns l, or Logger() when l is nil. Components take an
// optional logger in their config and resolve it once through here.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger()
}
