package main

import (
	"github.com/sirupsen/logrus"
)

// newLogger creates a new logger with the appropriate log level based on the
// verbose flag. If verbose is true, the logger is set to DebugLevel,
// otherwise WarnLevel so diagnostics never interleave with the result stream.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
