// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logging defines the minimal logging seam the core packages
// accept for the non-fatal warnings the spec calls for (SLI size-mismatch,
// reserved-field-nonzero). The core never depends on a concrete logging
// library; cmd/ tools wire in a real one.
package logging

// Logger is compatible with both the standard library log.Logger and
// github.com/sirupsen/logrus.Logger, so callers can pass either without an
// adapter.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Nop is a Logger that discards everything. Use it as the zero value
// wherever a Logger is optional.
type Nop struct{}

// Printf implements Logger by discarding the message.
func (Nop) Printf(format string, v ...interface{}) {}

// nopLogger is the shared instance returned by OrNop.
var nopLogger Logger = Nop{}

// OrNop returns lg if non-nil, otherwise a Logger that discards everything.
// Core packages use this so they can log unconditionally without a nil
// check at every call site.
func OrNop(lg Logger) Logger {
	if lg == nil {
		return nopLogger
	}
	return lg
}
