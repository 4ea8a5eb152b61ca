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

// Package cmdserver implements the single-threaded multiplexer spec.md
// calls component E: a bounded slot table of connections, a select-based
// readiness loop, admission control with a graceful rejection banner, and
// a human-readable status report.
package cmdserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/sabouaram/cmdserv/cmdlog"
	"github.com/sabouaram/cmdserv/config"
	"github.com/sabouaram/cmdserv/conn"
	"github.com/sabouaram/cmdserv/internal/rawsock"
	"github.com/sabouaram/cmdserv/loglevel"
)

// Syscalls is the narrow listener-level surface the server needs beyond
// per-connection conn.Socket: accepting off the listener and closing the
// listener at shutdown. rawsock.Adapter satisfies it; tests
// substitute internal/netfault's programmable fake.
type Syscalls interface {
	Accept4(listenFD int) (fd int, peer string, err error)
	Close(fd int) error
}

// Server owns the listener, the fixed-capacity slot table, and the
// readiness loop. It is not safe for concurrent use: every exported
// method is meant to run on the single goroutine driving Tick, matching
// spec.md §5's single-threaded scheduling model.
type Server struct {
	cfg serverCfg

	listenFD int
	syscalls Syscalls
	sock     conn.Socket

	slots []*conn.Connection // index -> occupant, nil if free
	byFD  map[int]int        // fd -> slot index, for the readiness scan

	readSet rawsock.ReadSet

	nextID        uint64
	totalAccepted uint64
	startedAt     int64

	log cmdlog.Sink
}

// serverCfg is the subset of config.Server this package keeps around
// after construction; kept unexported so config.Server stays the one
// public wire shape.
type serverCfg struct {
	connectionsMax int
	busyBanner     string
	connTemplate   conn.Template
}

// New builds a listener bound to cfg.Port (IPv6 any-address, non-blocking,
// SO_REUSEADDR) and an empty slot table of capacity cfg.ConnectionsMax.
// now is the construction-time unix-seconds clock read.
func New(cfg config.Server, now int64) (*Server, error) {
	if cfg.ConnectionsMax < 1 {
		return nil, errors.New("cmdserver: ConnectionsMax must be >= 1")
	}

	fd, err := rawsock.Listen(cfg.Port, cfg.ConnectionsBacklog)
	if err != nil {
		return nil, fmt.Errorf("cmdserver: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = cmdlog.Discard
	}
	banner := cfg.BusyBanner
	if banner == "" {
		banner = "500 Busy"
	}

	return &Server{
		cfg: serverCfg{
			connectionsMax: cfg.ConnectionsMax,
			busyBanner:     banner,
			connTemplate:   cfg.Connection.ToTemplate(),
		},
		listenFD:  fd,
		syscalls:  rawsock.Adapter{},
		sock:      rawsock.Adapter{},
		slots:     make([]*conn.Connection, cfg.ConnectionsMax),
		byFD:      make(map[int]int, cfg.ConnectionsMax),
		startedAt: now,
		log:       log,
	}, nil
}

func (s *Server) logf(lvl loglevel.Level, msg string) {
	if s.log != nil {
		s.log(s, lvl, msg)
	}
}

// Tick runs one iteration of the readiness loop: idle-timeout scan,
// select wait up to timeout, then Accept/Read for every ready descriptor
// (spec.md §4.1 "Readiness wait"). now is the caller's cached clock read
// for this iteration.
func (s *Server) Tick(timeout time.Duration, now int64) {
	s.closeIdleConnections(now)

	s.readSet.Reset()
	s.readSet.Add(s.listenFD)
	for fd := range s.byFD {
		s.readSet.Add(fd)
	}

	ready, err := s.readSet.Select(timeout)
	if err != nil {
		if errors.Is(err, rawsock.ErrInterrupted) {
			s.logf(loglevel.DebugLevel, "select: interrupted")
			return
		}
		s.logf(loglevel.ErrorLevel, "select: "+err.Error())
		return
	}

	for _, fd := range ready {
		if fd == s.listenFD {
			s.Accept(now)
			continue
		}
		idx, ok := s.byFD[fd]
		if !ok {
			continue
		}
		c := s.slots[idx]
		if c == nil {
			continue
		}
		if !c.Read(now) {
			s.reclaim(idx, fd)
		}
	}
}

func (s *Server) closeIdleConnections(now int64) {
	for idx, c := range s.slots {
		if c == nil {
			continue
		}
		if t := c.ClientTimeout(); t > 0 && c.IdleSeconds(now) > int64(t) {
			fd := c.FD()
			c.Close(conn.ClientTimeout)
			s.reclaim(idx, fd)
		}
	}
}

// Accept services the listener being read-ready: pick the lowest free
// slot, or reject with ServerTooManyConnections if none is free (spec.md
// §4.1 "Accept").
func (s *Server) Accept(now int64) {
	fd, peer, err := s.syscalls.Accept4(s.listenFD)
	if err != nil {
		if errors.Is(err, conn.ErrWouldBlock) {
			return
		}
		s.logf(loglevel.ErrorLevel, "accept: "+err.Error())
		return
	}

	s.totalAccepted++
	s.nextID++
	id := s.nextID

	idx := s.freeSlot()
	if idx < 0 {
		c := conn.New(id, fd, peer, now, s.sock, s.cfg.connTemplate)
		c.Open(conn.ServerTooManyConnections)
		_, _ = c.Println(s.cfg.busyBanner)
		c.Close(conn.ServerTooManyConnections)
		return
	}

	c := conn.New(id, fd, peer, now, s.sock, s.cfg.connTemplate)
	s.slots[idx] = c
	s.byFD[fd] = idx
	c.Open(conn.NoClose)
}

func (s *Server) freeSlot() int {
	for i, c := range s.slots {
		if c == nil {
			return i
		}
	}
	return -1
}

func (s *Server) reclaim(idx, fd int) {
	delete(s.byFD, fd)
	s.slots[idx] = nil
}

// Shutdown walks the slot table closing every connection with
// ServerShutdown, then closes the listener. Idempotent.
func (s *Server) Shutdown() {
	s.logf(loglevel.InfoLevel, "shutting down")
	for idx, c := range s.slots {
		if c == nil {
			continue
		}
		fd := c.FD()
		c.Close(conn.ServerShutdown)
		s.reclaim(idx, fd)
	}
	if s.listenFD >= 0 {
		_ = s.syscalls.Close(s.listenFD)
		s.listenFD = -1
	}
}
