/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	// FormatDefault uses the standard logrus text formatter.
	FormatDefault = "default"

	// FormatPlain disables colors and field sorting, useful when the
	// output is piped into a file.
	FormatPlain = "plain"

	// FormatJSON emits one JSON object per line.
	FormatJSON = "json"
)

// Log is the process wide logger used by every rootpak package.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// Configure returns a logrus.Formatter for the given format name.
func Configure(format string) (logrus.Formatter, error) {
	switch format {
	case FormatDefault, "":
		return &logrus.TextFormatter{DisableTimestamp: true}, nil
	case FormatPlain:
		return &logrus.TextFormatter{
			DisableColors:    true,
			DisableSorting:   true,
			DisableTimestamp: true,
		}, nil
	case FormatJSON:
		return &logrus.JSONFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown log format: %s", format)
}

// Setup applies the format and verbosity to the shared logger.
func Setup(format string, verbose bool) error {
	formatter, err := Configure(format)
	if err != nil {
		return err
	}
	Log.SetFormatter(formatter)
	SetVerbose(verbose)
	return nil
}

// SetVerbose toggles debug level logging.
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		return
	}
	Log.SetLevel(logrus.InfoLevel)
}

// SetOutput redirects the shared logger, mostly for tests.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// WithFields returns an entry carrying the given structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

func Printf(format string, args ...interface{}) {
	Log.Infof(format, args...)
}

func Println(args ...interface{}) {
	Log.Infoln(args...)
}

func Debugf(format string, args ...interface{}) {
	Log.Debugf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Log.Warnf(format, args...)
}
