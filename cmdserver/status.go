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

package cmdserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/sabouaram/cmdserv/strfmt"
)

// Status renders a human-readable, explicitly non-machine-parseable
// multi-line report: uptime, total accepted connections,
// connections-per-second, listener fd, then one row per occupied slot
// (spec.md §4.1 "Status report"). eol is used between lines, so callers
// embedding the report in a connection's own output can match the
// connection's line-termination mode. markConn, if non-zero, prefixes the
// matching row with "*".
func (s *Server) Status(now int64, eol string, markConn uint64) string {
	var b strings.Builder

	uptime := strfmt.Since(time.Unix(s.startedAt, 0), time.Unix(now, 0))
	elapsed := now - s.startedAt
	if elapsed < 1 {
		elapsed = 1
	}
	cps := float64(s.totalAccepted) / float64(elapsed)

	fmt.Fprintf(&b, "uptime: %s%s", uptime, eol)
	fmt.Fprintf(&b, "total connections: %d%s", s.totalAccepted, eol)
	fmt.Fprintf(&b, "connections/sec: %.3f%s", cps, eol)
	fmt.Fprintf(&b, "listener fd: %d%s", s.listenFD, eol)
	fmt.Fprintf(&b, "slots: %d/%d%s", s.occupied(), s.cfg.connectionsMax, eol)

	for idx, c := range s.slots {
		if c == nil {
			continue
		}
		mark := " "
		if markConn != 0 && c.ID() == markConn {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s[%d] id=%d fd=%d connected=%ds idle=%ds peer=%s%s",
			mark, idx, c.ID(), c.FD(), c.ConnectedSeconds(now), c.IdleSeconds(now), c.Peer(), eol)
	}

	return b.String()
}

func (s *Server) occupied() int {
	n := 0
	for _, c := range s.slots {
		if c != nil {
			n++
		}
	}
	return n
}
