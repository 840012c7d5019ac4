package sim

import "sync/atomic"

// debugLoggingEnabled guards per-tick debug logs of the driver.
// Set via EnableDebugLogging() during initialization based on config.LogLevel.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-tick debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use this to guard debug log calls on the tick path:
//
//	if sim.IsDebugEnabled() {
//	    slog.Debug("tick completed", "walkers", n)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
