/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package cmdlog provides the log sink contract used by the server and
// connection objects, plus a logrus-backed default implementation.
package cmdlog

import "github.com/sabouaram/cmdserv/loglevel"

// Sink receives one log message. obj is the opaque object the application
// registered alongside the sink (nil if none); it is never interpreted by
// the library, only handed back unchanged, mirroring the teacher's
// `_object` callback convention folded into a closure-friendly signature.
type Sink func(obj any, lvl loglevel.Level, msg string)

// Discard is a Sink that drops every message. Useful for tests that don't
// want stderr noise.
func Discard(_ any, _ loglevel.Level, _ string) {}
