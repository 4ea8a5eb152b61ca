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

// State is the two-value dispatch state: whether control is inside the
// cmd handler. It carries no close information; a requested close is
// recorded in the connection's pending close reason, and a completed one
// is reported by Closed.
type State uint8

const (
	// Default means the connection is idle: the reader may dispatch a
	// command, and a Close call takes effect immediately.
	Default State = iota
	// Handled means control is currently inside the cmd handler for this
	// connection; a Close call is recorded but deferred until the
	// handler returns.
	Handled
)

// TermMode selects how Read recognizes a complete line.
type TermMode uint8

const (
	// LF ends a line on any '\n'; a preceding '\r' is left in the token
	// text (stripped only by the default tokenizer's whitespace rule).
	LF TermMode = iota
	// CRLF ends a line only on "\r\n"; both bytes are stripped.
	CRLF
	// CRLFOrLF ends a line on either "\r\n" or a bare '\n'; a preceding
	// '\r' is stripped when present.
	CRLFOrLF
)

// EOL returns the bytes appended by Println and SendStatus: "\n" in LF
// mode, "\r\n" otherwise (spec.md §6).
func (m TermMode) EOL() string {
	if m == LF {
		return "\n"
	}
	return "\r\n"
}
