// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package log

import (
	"io"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Log is the logger every package of the module writes to.
var Log = NewLogger(os.Stderr)

// Logger adds the calling package and file to every entry.
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a text logger at info level writing to out.
func NewLogger(out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{Logger: l}
}

// Configure sets the level by name ("debug", "info", ...) and switches to JSON output
// when asJSON is set.
func (l *Logger) Configure(level string, asJSON bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	if asJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func (l *Logger) setCommonFields() *logrus.Entry {
	fields := logrus.Fields{}
	if _, file, _, ok := runtime.Caller(2); ok {
		fields["package"] = path.Base(path.Dir(file))
		fields["fileName"] = path.Base(file)
	}
	return l.WithFields(fields)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.setCommonFields().Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.setCommonFields().Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.setCommonFields().Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.setCommonFields().Errorf(format, args...)
}
