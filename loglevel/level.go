/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package loglevel defines the severity scale shared by the server and
// connection log sinks.
package loglevel

import "strings"

// Level is the severity of a single log message emitted by the server or
// a connection.
type Level uint8

const (
	// PanicLevel marks a condition the library itself cannot recover from.
	PanicLevel Level = iota
	// FatalLevel marks a condition that should abort the host process.
	FatalLevel
	// ErrorLevel marks a failure that aborted the current operation.
	ErrorLevel
	// WarnLevel marks a recovered, but notable, condition (e.g. framing
	// overflow, tokenizer overflow).
	WarnLevel
	// InfoLevel marks routine lifecycle events (accept, close, shutdown).
	InfoLevel
	// DebugLevel marks fine-grained diagnostic detail (EINTR retries, etc).
	DebugLevel
	// NilLevel disables logging entirely; never passed to a sink, only
	// used as a minimum-level filter value.
	NilLevel
)

var names = [...]string{
	PanicLevel: "panic",
	FatalLevel: "fatal",
	ErrorLevel: "error",
	WarnLevel:  "warning",
	InfoLevel:  "info",
	DebugLevel: "debug",
	NilLevel:   "nil",
}

// String returns the lowercase name of the level, or "unknown" for a value
// outside the defined range.
func (l Level) String() string {
	if int(l) >= len(names) {
		return "unknown"
	}
	return names[l]
}

// ParseLevel maps a case-insensitive name back to a Level. Unrecognized
// input returns InfoLevel, matching the teacher's permissive parsing
// convention for configuration values.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Level(i)
		}
	}
	return InfoLevel
}
