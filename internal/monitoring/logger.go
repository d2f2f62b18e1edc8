// Package monitoring carries the diagnostic logging hook shared by the
// pipeline stages and the command-line tool.
package monitoring

import "log"

// Logf is the package-level progress logger. It defaults to log.Printf; the
// CLI mutes it with -q and tests redirect it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
