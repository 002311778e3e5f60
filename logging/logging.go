// Package logging provides the module's default logr.Logger, backed by
// logfmtr.
package logging

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/iand/logfmtr"
)

var opts = logfmtr.Options{
	Writer:    os.Stderr,
	Colorize:  true,
	Humanize:  true,
	NameDelim: "/",
}

var defaultLogger = logfmtr.NewWithOptions(opts)

// DefaultLogger returns the default (module-specific) logger.
func DefaultLogger() logr.Logger {
	return defaultLogger
}

// SetVerbosity sets the verbosity of loggers created by logfmtr. Messages
// logged with V(n) for n greater than v are discarded.
func SetVerbosity(v int) {
	logfmtr.SetVerbosity(v)
}

// New returns a logger that writes plain (uncolored) logfmt lines to w.
func New(w io.Writer) logr.Logger {
	return logfmtr.NewWithOptions(logfmtr.Options{
		Writer:    w,
		Humanize:  true,
		NameDelim: "/",
	})
}

// DisabledLogger returns a logger that discards all messages.
func DisabledLogger() logr.Logger {
	return logr.Discard()
}
