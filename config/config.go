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

// Package config holds the plain value records that build a server and the
// connection template it clones for every accepted socket. Default and
// DefaultConnection document the default value of each field.
package config

import (
	"github.com/sabouaram/cmdserv/cmdlog"
	"github.com/sabouaram/cmdserv/conn"
	"github.com/sabouaram/cmdserv/tokenize"
)

// Server configures cmdserver.New.
type Server struct {
	// ConnectionsMax is the slot-table capacity. Admission beyond this
	// count is rejected with BusyBanner.
	ConnectionsMax int
	// ConnectionsBacklog is passed to listen(2).
	ConnectionsBacklog int
	// Port is the TCP port the listener binds on every address (IPv6 any).
	Port int
	// BusyBanner is written to a connection rejected for admission before
	// it is closed with conn.ServerTooManyConnections. SPEC_FULL.md §5.5.
	BusyBanner string
	// Log receives server-level messages (accept/shutdown/tick errors).
	Log cmdlog.Sink
	// Connection is the template every accepted socket's Connection is
	// built from. Its handlers are installed unchanged; the server frees a
	// connection's slot itself after the connection closes.
	Connection Connection
}

// Connection configures one accepted socket.
type Connection struct {
	// ReadBufSize bounds the longest line the connection can frame.
	ReadBufSize int
	// ArgcMax bounds the number of tokens a line may produce.
	ArgcMax int
	// Tokenizer splits a framed line into argv. A nil Tokenizer puts the
	// connection in raw-line mode: the whole line becomes argv[0].
	Tokenizer tokenize.Func
	// TermMode selects the line-terminator recognized by Read.
	TermMode conn.TermMode
	// ClientTimeout is the idle-seconds budget before a connection is
	// closed with conn.ClientTimeout; 0 disables the check.
	ClientTimeout int

	// CmdHandler is invoked once per complete, non-overflowing line.
	CmdHandler func(c *conn.Connection, argv [][]byte)
	// OpenHandler is invoked once per accepted connection, including
	// rejected ones (reason != conn.NoClose signals immediate rejection).
	OpenHandler func(c *conn.Connection, reason conn.CloseReason)
	// CloseHandler is invoked exactly once when the connection is torn
	// down, with the reason that triggered destruction.
	CloseHandler func(c *conn.Connection, reason conn.CloseReason)

	// Log receives connection-level messages (framing overflow, tokenizer
	// overflow, close). Falls back to cmdlog.Discard when nil.
	Log cmdlog.Sink
}

// ToTemplate converts a Connection config record into the conn.Template
// shape Connection objects are actually built from. The two types carry
// identical fields on purpose: config stays the public, documented wire
// shape while conn.Template stays free of a dependency on this package.
func (c Connection) ToTemplate() conn.Template {
	return conn.Template{
		ReadBufSize:   c.ReadBufSize,
		ArgcMax:       c.ArgcMax,
		Tokenizer:     c.Tokenizer,
		TermMode:      c.TermMode,
		ClientTimeout: c.ClientTimeout,
		CmdHandler:    c.CmdHandler,
		OpenHandler:   c.OpenHandler,
		CloseHandler:  c.CloseHandler,
		Log:           c.Log,
	}
}

// Default returns a Server with the library defaults: port 50000, 16
// connections, backlog 8, a "500 Busy" busy banner, the default connection
// template from DefaultConnection, and a logrus-backed stderr sink.
func Default() Server {
	return Server{
		ConnectionsMax:     16,
		ConnectionsBacklog: 8,
		Port:               50000,
		BusyBanner:         "500 Busy",
		Log:                cmdlog.Default(nil),
		Connection:         DefaultConnection(),
	}
}

// DefaultConnection returns a Connection template with a 1024-byte read
// buffer, 8 arguments, the default shell-like tokenizer, CRLF_OR_LF
// framing, no idle timeout, and no handlers installed.
func DefaultConnection() Connection {
	return Connection{
		ReadBufSize:   1024,
		ArgcMax:       8,
		Tokenizer:     tokenize.Default,
		TermMode:      conn.CRLFOrLF,
		ClientTimeout: 0,
		Log:           cmdlog.Default(nil),
	}
}
