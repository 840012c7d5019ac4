package walker

import "sync/atomic"

// debugLoggingEnabled controls per-tick debug logging of the walker engine.
// Checked before building log attributes on hot paths.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables walker debug logging.
// Must be called during initialization (e.g., from main.go after parsing config).
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use this to guard expensive debug log calls:
//
//	if walker.IsDebugEnabled() {
//	    slog.Debug("roam step", "walkerID", w.ID(), "memory", s.Memory())
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
