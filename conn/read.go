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

import (
	"bytes"
	"errors"

	"github.com/sabouaram/cmdserv/loglevel"
	"github.com/sabouaram/cmdserv/strfmt"
)

// ErrWouldBlock is the sentinel Socket implementations return for
// EAGAIN/EWOULDBLOCK/EINTR; conn.Read treats it as "nothing to do".
var ErrWouldBlock = errors.New("conn: would block")

// Read services one readiness notification: a single non-blocking recv,
// then a scan of the newly appended bytes for complete lines per the
// active TermMode, dispatching each to handleLine in order. now is the
// caller's cached clock read for this tick. Returns true if the
// connection is still open after the call.
func (c *Connection) Read(now int64) bool {
	if c.closed {
		return false
	}

	n, err := c.sock.Recv(c.fd, c.buf[c.buflen:])
	if err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return true
		}
		c.Close(ClientReceiveError)
		return !c.closed
	}
	if n == 0 {
		c.Close(ClientDisconnect)
		return !c.closed
	}

	c.lastActivity = now
	c.buflen += n

	scanned := 0
	for {
		line, consumed, complete := c.scanLine(c.buf[scanned:c.buflen])
		if !complete {
			break
		}
		scanned += consumed

		if c.overflow {
			c.overflow = false
			c.SendStatus(400, "Command too long")
		} else {
			c.dispatch(line)
			if c.pendingCloseReason != NoClose {
				c.performClose()
				return false
			}
		}
	}

	// Compact: move the unscanned remainder to the front of the buffer.
	remaining := c.buflen - scanned
	copy(c.buf[:remaining], c.buf[scanned:c.buflen])
	c.buflen = remaining

	if c.buflen == len(c.buf) {
		if !c.overflow {
			c.logf(loglevel.WarnLevel, "read buffer full before a line terminator, discarding")
		}
		c.overflow = true
		c.buflen = 0
	}

	return true
}

// scanLine looks for one complete line at the front of window per the
// connection's TermMode. consumed is the number of bytes (including the
// terminator) to advance past; line is the terminator-stripped content,
// valid only until the next call that compacts the buffer.
func (c *Connection) scanLine(window []byte) (line []byte, consumed int, complete bool) {
	switch c.termMode {
	case CRLF:
		i := bytes.Index(window, []byte("\r\n"))
		if i < 0 {
			return nil, 0, false
		}
		return window[:i], i + 2, true

	case CRLFOrLF:
		i := bytes.IndexByte(window, '\n')
		if i < 0 {
			return nil, 0, false
		}
		end := i
		if end > 0 && window[end-1] == '\r' {
			end--
		}
		return window[:end], i + 1, true

	default: // LF
		i := bytes.IndexByte(window, '\n')
		if i < 0 {
			return nil, 0, false
		}
		return window[:i], i + 1, true
	}
}

// dispatch runs handleLine under the Handled state, per spec.md §4.2's
// state machine: DEFAULT -> HANDLED on entry, HANDLED -> DEFAULT on
// return, immediately followed (by the caller, Read) by a check of
// pendingCloseReason.
func (c *Connection) dispatch(line []byte) {
	c.state = Handled
	c.currentCmd = strfmt.LogSafe(line)

	c.handleLine(line)

	c.argc = 0
	c.argv[0] = nil
	c.currentCmd = ""
	c.state = Default
}

// handleLine tokenizes line and invokes the cmd handler, per spec.md
// §4.2 "Line dispatch".
func (c *Connection) handleLine(line []byte) {
	if c.tokenizer == nil {
		c.argv[0] = line
		if len(c.argv) > 1 {
			c.argv[1] = nil
		}
		c.argc = 1
	} else {
		argc, overflow := c.tokenizer(line, c.argv[:len(c.argv)-1])
		if overflow {
			c.logf(loglevel.WarnLevel, "tokenizer overflow")
			c.SendStatus(400, "Too many arguments")
			return
		}
		c.argc = argc
		c.argv[argc] = nil
	}

	if c.cmdHandler != nil {
		c.cmdHandler(c, c.argv[:c.argc])
	}
}
