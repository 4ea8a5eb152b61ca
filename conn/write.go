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

import "fmt"

// Print stages raw bytes into the write buffer and sends them, with no
// terminator appended.
func (c *Connection) Print(s string) (int, error) {
	c.wbuf = append(c.wbuf[:0], s...)
	return c.writeOut(c.wbuf)
}

// Println appends the mode's output EOL ("\n" in LF mode, "\r\n"
// otherwise) to s and sends it.
func (c *Connection) Println(s string) (int, error) {
	c.wbuf = c.wbuf[:0]
	c.wbuf = append(c.wbuf, s...)
	c.wbuf = append(c.wbuf, c.termMode.EOL()...)
	return c.writeOut(c.wbuf)
}

// Printf formats into the connection's growable write buffer, doubling
// it until the formatted text fits, then sends the result with no
// terminator (spec.md §4.2 "printf").
func (c *Connection) Printf(format string, args ...any) (int, error) {
	c.format(format, args...)
	return c.writeOut(c.wbuf)
}

// SendStatus clamps code into [100,999] (defaulting to 500 when out of
// range), then sends "NNN <message><EOL>" through the same
// buffer-resizing discipline as Printf.
func (c *Connection) SendStatus(code int, format string, args ...any) (int, error) {
	if code < 100 || code > 999 {
		code = 500
	}
	msg := fmt.Sprintf(format, args...)
	c.format("%d %s%s", code, msg, c.termMode.EOL())
	return c.writeOut(c.wbuf)
}

// Send is a direct passthrough to the socket: n bytes of buf are written
// with no framing and no use of the write buffer.
func (c *Connection) Send(buf []byte) (int, error) {
	return c.sock.Send(c.fd, buf)
}

// format (re)builds c.wbuf from format/args. spec.md §9 describes the
// write buffer growing by doubling until a formatted string fits; Go's
// append-based fmt.Appendf already gives that growth for free (it never
// truncates), so this just resets and appends rather than re-running a
// separate size-probe pass.
func (c *Connection) format(format string, args ...any) {
	c.wbuf = fmt.Appendf(c.wbuf[:0], format, args...)
}

// writeOut is the common tail of every write helper: one best-effort send
// through the socket. Partial or failed writes are reported to the
// caller, never retried (SPEC_FULL.md §5.3).
func (c *Connection) writeOut(buf []byte) (int, error) {
	return c.sock.Send(c.fd, buf)
}
