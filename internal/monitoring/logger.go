// Package monitoring carries warnings that should not abort a scan, such as
// a plot that could not be written.
package monitoring

import "log"

// Logf receives non-fatal warnings. It writes through the standard logger
// unless SetLogger installs something else.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger routes warnings to f. A nil f discards them.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
