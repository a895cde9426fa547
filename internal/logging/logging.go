// Package logging builds the leveled logger shared by the CLI and pipeline.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out. Debug output is enabled when
// verbose is set; otherwise only warnings and errors are shown. Per-run
// problems are printed by the caller from the returned report.
func New(out io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
