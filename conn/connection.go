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

// Package conn implements the per-socket state machine spec.md calls
// component D: framing a byte stream into lines, tokenizing each line into
// an argv, dispatching to an application callback, and a deferred
// two-phase close protocol so a callback can request its own connection's
// destruction without the reader tearing down state the callback is still
// using.
package conn

import (
	"github.com/sabouaram/cmdserv/cmdlog"
	"github.com/sabouaram/cmdserv/loglevel"
	"github.com/sabouaram/cmdserv/tokenize"
)

// Template is the subset of config.Connection the Connection object needs
// at construction time. config.Connection and Template have identical
// field shapes; cmdserver copies one into the other so this package never
// imports config (which itself imports conn for TermMode/CloseReason).
type Template struct {
	ReadBufSize   int
	ArgcMax       int
	Tokenizer     tokenize.Func
	TermMode      TermMode
	ClientTimeout int

	CmdHandler   func(c *Connection, argv [][]byte)
	OpenHandler  func(c *Connection, reason CloseReason)
	CloseHandler func(c *Connection, reason CloseReason)

	Log cmdlog.Sink
}

// Connection owns one accepted socket: its read buffer, write buffer,
// argv storage, and close state. Nothing in this struct is shared with
// any other Connection or with the server except the file descriptor
// number recorded at construction.
type Connection struct {
	id   uint64
	fd   int
	peer string

	connectedAt  int64 // unix seconds
	lastActivity int64 // unix seconds

	clientTimeout int // seconds; 0 disables

	buf        []byte
	buflen     int
	overflow   bool
	termMode   TermMode

	argv      [][]byte
	argc      int
	tokenizer tokenize.Func

	wbuf []byte // growable write buffer, spec.md §4.2 "Write helpers"

	state              State
	pendingCloseReason CloseReason

	cmdHandler   func(c *Connection, argv [][]byte)
	openHandler  func(c *Connection, reason CloseReason)
	closeHandler func(c *Connection, reason CloseReason)
	log          cmdlog.Sink

	// currentCmd holds a log-safe rendering of the line under dispatch,
	// valid only between state transitions to Handled and back.
	currentCmd string

	userData any

	closed bool

	sock Socket
}

// Socket is the narrow raw-socket surface a Connection needs: one
// non-blocking read and one best-effort write. internal/rawsock's package
// functions satisfy it via rawsock.Adapter; tests substitute
// internal/netfault's programmable fakes.
type Socket interface {
	Recv(fd int, buf []byte) (int, error)
	Send(fd int, buf []byte) (int, error)
	Close(fd int) error
}

// New builds a Connection around an already-accepted, non-blocking socket
// fd. now is the accept-time unix-seconds timestamp (passed in rather than
// taken internally so the server can timestamp the whole slot table from
// one clock read per tick). The connection is not yet open-called; the
// caller (cmdserver.Accept) invokes OpenHandler itself so it can pass a
// non-NoClose reason for immediate-reject connections without this
// constructor needing to know about admission control.
func New(id uint64, fd int, peer string, now int64, sock Socket, t Template) *Connection {
	argcMax := t.ArgcMax
	if argcMax < 1 {
		argcMax = 1
	}
	readbuf := t.ReadBufSize
	if readbuf < 1 {
		readbuf = 1
	}

	log := t.Log
	if log == nil {
		log = cmdlog.Discard
	}

	return &Connection{
		id:            id,
		fd:            fd,
		peer:          peer,
		connectedAt:   now,
		lastActivity:  now,
		clientTimeout: t.ClientTimeout,
		buf:           make([]byte, readbuf),
		termMode:      t.TermMode,
		argv:          make([][]byte, argcMax+1),
		tokenizer:     t.Tokenizer,
		wbuf:          make([]byte, 0, 1024),
		state:         Default,
		cmdHandler:    t.CmdHandler,
		openHandler:   t.OpenHandler,
		closeHandler:  t.CloseHandler,
		log:           log,
		sock:          sock,
	}
}

// ID returns the connection's monotonically increasing identity assigned
// at accept time.
func (c *Connection) ID() uint64 { return c.id }

// FD returns the underlying socket file descriptor.
func (c *Connection) FD() int { return c.fd }

// Peer returns the numeric "host:port" string rendered once at accept.
func (c *Connection) Peer() string { return c.peer }

// ConnectedSeconds returns the number of seconds since accept, as of now.
func (c *Connection) ConnectedSeconds(now int64) int64 { return now - c.connectedAt }

// IdleSeconds returns the number of seconds since the last successful
// read, as of now.
func (c *Connection) IdleSeconds(now int64) int64 { return now - c.lastActivity }

// ClientTimeout returns the configured idle-seconds budget; 0 means
// disabled.
func (c *Connection) ClientTimeout() int { return c.clientTimeout }

// SetClientTimeout updates the idle-seconds budget, clamped to >= 0.
func (c *Connection) SetClientTimeout(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	c.clientTimeout = seconds
}

// SwapTokenizer installs a new tokenizer function (nil selects raw-line
// mode) and returns the one previously installed.
func (c *Connection) SwapTokenizer(t tokenize.Func) tokenize.Func {
	old := c.tokenizer
	c.tokenizer = t
	return old
}

// CurrentCommand returns a log-safe rendering of the line currently being
// dispatched. Only meaningful while called from within the cmd handler;
// outside of one it returns the empty string.
func (c *Connection) CurrentCommand() string { return c.currentCmd }

// UserData returns the opaque per-connection slot application handlers
// may use to stash session state across invocations (SPEC_FULL.md §5.6).
func (c *Connection) UserData() any { return c.userData }

// SetUserData replaces the per-connection user-data slot.
func (c *Connection) SetUserData(v any) { c.userData = v }

func (c *Connection) logf(lvl loglevel.Level, msg string) {
	if c.log != nil {
		c.log(c, lvl, msg)
	}
}
