// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// log is a logger that is initialized with no output filters. This means
// the package will not perform any logging by default until the caller
// requests it.
var log btclog.Logger

// The default amount of logging is none.
func init() {
	DisableLog()
}

// DisableLog disables all library log output. Logging output is disabled
// by default until either UseLogger or InitLogRotator is called.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info. This
// should be used in preference to InitLogRotator if the caller already has
// its own btclog-based logging set up.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// logRotator is the rotated-file destination set up by InitLogRotator, if
// any. It is nil until InitLogRotator is called.
var logRotator *rotator.Rotator

// logWriter implements an io.Writer that outputs to both standard output
// and the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// InitLogRotator initializes a rotating log file at logFile, creating the
// containing directory if necessary, and wires the package logger to write
// to it (in addition to stdout). Host applications that embed this module
// into a full node and want rotated log files on disk should call this
// once during startup; it is entirely optional.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return err
		}
	}

	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r

	backend := btclog.NewBackend(logWriter{})
	log = backend.Logger("TXPL")

	return nil
}
