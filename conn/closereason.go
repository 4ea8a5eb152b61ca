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

import "strconv"

// CloseReason identifies why a Connection was, or is about to be,
// destroyed. Applications may pass any positive value of their own
// through Close; the library itself only ever produces the values below
// (spec.md §4.2).
type CloseReason int

const (
	// NoClose means the connection is still active. It is only ever
	// seen as the reason argument to an open handler, meaning "accepted
	// normally".
	NoClose CloseReason = 0

	// ApplicationClose is used when an application calls Close(NoClose)
	// or Close(ApplicationClose) directly: a close with no specific
	// library reason.
	ApplicationClose CloseReason = 1

	// ClientDisconnect means the peer closed its side (read returned 0).
	ClientDisconnect CloseReason = 490
	// ClientReceiveError means recv returned an unrecoverable error.
	ClientReceiveError CloseReason = 491
	// ClientTimeout means the connection's idle time exceeded its
	// configured ClientTimeout.
	ClientTimeout CloseReason = 492

	// ServerShutdown means the server is tearing down every connection.
	ServerShutdown CloseReason = 590
	// ServerTooManyConnections means admission was refused because the
	// slot table was full.
	ServerTooManyConnections CloseReason = 591
)

// String renders the reason using the library's own names for its
// reserved values, and a generic "reason NNN" for application-assigned
// values.
func (r CloseReason) String() string {
	switch r {
	case NoClose:
		return "no close"
	case ApplicationClose:
		return "application close"
	case ClientDisconnect:
		return "client disconnect"
	case ClientReceiveError:
		return "client receive error"
	case ClientTimeout:
		return "client timeout"
	case ServerShutdown:
		return "server shutdown"
	case ServerTooManyConnections:
		return "too many connections"
	default:
		return "reason " + strconv.Itoa(int(r))
	}
}
