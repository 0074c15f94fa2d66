package pgbootstrap

import (
	"log/slog"

	"github.com/giantswarm/pgbootstrap/internal/logging"
)

// SetLogger replaces the package-level logger used by pgbootstrap. The
// provided logger should already carry any desired attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute. Call SetLogger(nil) after slog.SetDefault() to
// pick up changes.
//
// SetLogger is safe to call concurrently with a running boot, but the
// new logger is only seen by components created after the call.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}
