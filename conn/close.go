/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package conn

import "github.com/sabouaram/cmdserv/loglevel"

// Open invokes the open handler, passing reason unchanged. The server
// calls this once per accepted connection — including rejected ones,
// whose reason is ServerTooManyConnections rather than NoClose — never
// the Connection itself, since only the server knows whether admission
// succeeded (spec.md §4.1 "Accept").
func (c *Connection) Open(reason CloseReason) {
	if c.openHandler != nil {
		c.openHandler(c, reason)
	}
}

// Close requests destruction of the connection with reason. If called
// while a cmd handler is running (state == Handled), the request is only
// recorded; the reader performs the actual close once the handler
// returns (spec.md §4.2 "Deferred-close protocol"). Safe to call more
// than once; each call overwrites the pending reason, so the last call
// before the handler returns wins.
func (c *Connection) Close(reason CloseReason) {
	if c.closed {
		return
	}
	if reason == NoClose {
		reason = ApplicationClose
	}
	c.pendingCloseReason = reason

	if c.state == Handled {
		return
	}
	c.performClose()
}

// performClose runs the close callback exactly once, closes the socket,
// and marks the connection terminal. Callers must only invoke this from
// Default state with a pending reason already recorded.
func (c *Connection) performClose() {
	if c.closed {
		return
	}
	c.closed = true

	c.logf(loglevel.InfoLevel, "closing")

	reason := c.pendingCloseReason
	if reason == NoClose {
		reason = ApplicationClose
	}

	if c.closeHandler != nil {
		c.closeHandler(c, reason)
	}

	_ = c.sock.Close(c.fd)

	c.buf = nil
	c.argv = nil
	c.wbuf = nil
}

// Closed reports whether performClose has already run.
func (c *Connection) Closed() bool { return c.closed }

// PendingCloseReason reports the reason recorded by the most recent Close
// call, or NoClose if none is pending.
func (c *Connection) PendingCloseReason() CloseReason { return c.pendingCloseReason }
