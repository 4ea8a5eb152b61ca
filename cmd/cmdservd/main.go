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

// Command cmdservd is a reference shell driver demonstrating the library
// end-to-end: it exposes the CLI surface named in spec.md §6 (help,
// value get|set, timeout, parse, server status|shutdown,
// exit|quit|disconnect) over a cmdserver.Server. It is not part of the
// importable API.
package main

import (
	"flag"
	"strconv"
	"strings"
	"time"

	"github.com/sabouaram/cmdserv/cmdlog"
	"github.com/sabouaram/cmdserv/cmdserver"
	"github.com/sabouaram/cmdserv/config"
	"github.com/sabouaram/cmdserv/conn"
	"github.com/sabouaram/cmdserv/loglevel"
)

// session is the per-connection UserData this driver stashes through
// conn.Connection.SetUserData (SPEC_FULL.md §5.6).
type session struct {
	value string
}

// driver wires the cmdserver callbacks to a running *cmdserver.Server so
// "server status"/"server shutdown" can reach it; srv is filled in after
// cmdserver.New returns, before the first Tick.
type driver struct {
	srv *cmdserver.Server
}

func main() {
	port := flag.Int("port", 50000, "TCP port to listen on")
	maxConns := flag.Int("max-conns", 16, "maximum concurrent connections")
	flag.Parse()

	log := cmdlog.Default(nil)
	d := &driver{}

	cfg := config.Default()
	cfg.Port = *port
	cfg.ConnectionsMax = *maxConns
	cfg.Log = log
	cfg.Connection.Log = log
	cfg.Connection.OpenHandler = d.onOpen
	cfg.Connection.CloseHandler = d.onClose
	cfg.Connection.CmdHandler = d.onCommand

	srv, err := cmdserver.New(cfg, time.Now().Unix())
	if err != nil {
		log(nil, loglevel.ErrorLevel, "failed to start: "+err.Error())
		return
	}
	d.srv = srv

	for {
		srv.Tick(time.Second, time.Now().Unix())
	}
}

func (d *driver) onOpen(c *conn.Connection, reason conn.CloseReason) {
	if reason != conn.NoClose {
		_, _ = c.Println("500 Busy")
		return
	}
	c.SetUserData(&session{})
	_, _ = c.Println("101 Ready")
}

func (d *driver) onClose(c *conn.Connection, reason conn.CloseReason) {
	// The library already logs "closing"; this driver has nothing to add.
}

func (d *driver) onCommand(c *conn.Connection, argv [][]byte) {
	if len(argv) == 0 {
		_, _ = c.SendStatus(100, "")
		return
	}

	cmd := string(argv[0])
	args := argv[1:]

	switch cmd {
	case "help":
		_, _ = c.SendStatus(200, "help, value get|set, timeout, parse, server status|shutdown, exit|quit|disconnect")

	case "value":
		handleValue(c, args)

	case "timeout":
		handleTimeout(c, args)

	case "parse":
		_, _ = c.SendStatus(200, "argc=%d", len(args))

	case "server":
		d.handleServer(c, args)

	case "exit", "quit", "disconnect":
		_, _ = c.SendStatus(200, "bye")
		c.Close(conn.ApplicationClose)

	default:
		_, _ = c.SendStatus(400, "unknown command %q", cmd)
	}
}

func handleValue(c *conn.Connection, args [][]byte) {
	s, _ := c.UserData().(*session)
	if s == nil {
		s = &session{}
		c.SetUserData(s)
	}

	if len(args) == 0 {
		_, _ = c.SendStatus(400, "value get|set")
		return
	}

	switch string(args[0]) {
	case "get":
		_, _ = c.SendStatus(200, "%s", s.value)
	case "set":
		s.value = string(bytesJoin(args[1:]))
		_, _ = c.SendStatus(200, "OK")
	default:
		_, _ = c.SendStatus(400, "value get|set")
	}
}

func handleTimeout(c *conn.Connection, args [][]byte) {
	if len(args) == 0 {
		_, _ = c.SendStatus(200, "%d", c.ClientTimeout())
		return
	}
	seconds, err := strconv.Atoi(string(args[0]))
	if err != nil || seconds < 0 {
		_, _ = c.SendStatus(400, "timeout <seconds>")
		return
	}
	c.SetClientTimeout(seconds)
	_, _ = c.SendStatus(200, "OK")
}

func (d *driver) handleServer(c *conn.Connection, args [][]byte) {
	if len(args) == 0 {
		_, _ = c.SendStatus(400, "server status|shutdown")
		return
	}
	switch string(args[0]) {
	case "status":
		now := time.Now().Unix()
		for _, line := range strings.Split(strings.TrimRight(d.srv.Status(now, "\n", c.ID()), "\n"), "\n") {
			_, _ = c.Println(line)
		}
	case "shutdown":
		_, _ = c.SendStatus(200, "shutting down")
		d.srv.Shutdown()
	default:
		_, _ = c.SendStatus(400, "server status|shutdown")
	}
}

func bytesJoin(parts [][]byte) []byte {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = string(p)
	}
	return []byte(strings.Join(strs, " "))
}
