// Package monitoring carries the process-wide diagnostic logger. Simulation
// packages log through Logf so commands can redirect output and tests can
// mute it without touching the stages themselves.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, log.Printf by default.
// Replace it with SetLogger. Nothing in the hot per-atom loops calls it.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, silencing diagnostics entirely.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
