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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/cmdserv/cmdlog"
	"github.com/sabouaram/cmdserv/conn"
	"github.com/sabouaram/cmdserv/internal/netfault"
)

// recordingSocket is the conn.Socket a netfault.Fake delegates to in these
// tests: it never blocks on Recv and just records what Send/Close receive,
// so Accept/Shutdown can be driven without a real file descriptor.
type recordingSocket struct {
	sent   [][]byte
	closed []int
}

func (s *recordingSocket) Recv(_ int, _ []byte) (int, error) { return 0, conn.ErrWouldBlock }
func (s *recordingSocket) Send(_ int, buf []byte) (int, error) {
	s.sent = append(s.sent, append([]byte(nil), buf...))
	return len(buf), nil
}
func (s *recordingSocket) Close(fd int) error {
	s.closed = append(s.closed, fd)
	return nil
}

func newTestServer(maxConns int, banner string, tpl conn.Template, fake *netfault.Fake) *Server {
	return &Server{
		cfg: serverCfg{
			connectionsMax: maxConns,
			busyBanner:     banner,
			connTemplate:   tpl,
		},
		listenFD:  3,
		syscalls:  fake,
		sock:      fake,
		slots:     make([]*conn.Connection, maxConns),
		byFD:      make(map[int]int, maxConns),
		startedAt: 1000,
		log:       cmdlog.Discard,
	}
}

var _ = Describe("Accept", func() {
	It("assigns the first accepted connection to slot 0 and calls OpenHandler with NoClose", func() {
		var openReason conn.CloseReason
		var openCalled bool
		tpl := conn.Template{
			ReadBufSize: 64,
			ArgcMax:     4,
			OpenHandler: func(_ *conn.Connection, r conn.CloseReason) {
				openCalled = true
				openReason = r
			},
		}
		fake := &netfault.Fake{
			Real:          &recordingSocket{},
			AcceptResults: []netfault.AcceptResult{{FD: 11, Peer: "10.0.0.1:1"}},
		}
		s := newTestServer(2, "500 Busy", tpl, fake)

		s.Accept(1000)

		Expect(openCalled).To(BeTrue())
		Expect(openReason).To(Equal(conn.NoClose))
		Expect(s.slots[0]).NotTo(BeNil())
		Expect(s.byFD[11]).To(Equal(0))
	})

	It("rejects admission once the slot table is full, writing the busy banner", func() {
		tpl := conn.Template{ReadBufSize: 64, ArgcMax: 4}
		rec := &recordingSocket{}
		fake := &netfault.Fake{
			Real: rec,
			AcceptResults: []netfault.AcceptResult{
				{FD: 11, Peer: "peer-a"},
				{FD: 12, Peer: "peer-b"},
			},
		}
		s := newTestServer(1, "500 Busy", tpl, fake)

		s.Accept(1000) // fills the only slot
		Expect(s.slots[0]).NotTo(BeNil())

		s.Accept(1000) // slot table full now

		Expect(rec.sent).To(HaveLen(1))
		Expect(string(rec.sent[0])).To(Equal("500 Busy\n"))
		Expect(rec.closed).To(Equal([]int{12}))
	})

	It("invokes OpenHandler with ServerTooManyConnections for a rejected connection", func() {
		var reasons []conn.CloseReason
		tpl := conn.Template{
			ReadBufSize: 64,
			ArgcMax:     4,
			OpenHandler: func(_ *conn.Connection, r conn.CloseReason) {
				reasons = append(reasons, r)
			},
		}
		fake := &netfault.Fake{
			Real: &recordingSocket{},
			AcceptResults: []netfault.AcceptResult{
				{FD: 11, Peer: "a"},
				{FD: 12, Peer: "b"},
			},
		}
		s := newTestServer(1, "500 Busy", tpl, fake)

		s.Accept(1000)
		s.Accept(1000)

		Expect(reasons).To(Equal([]conn.CloseReason{conn.NoClose, conn.ServerTooManyConnections}))
	})

	It("does nothing when Accept4 reports would-block", func() {
		tpl := conn.Template{ReadBufSize: 64, ArgcMax: 4}
		fake := &netfault.Fake{Real: &recordingSocket{}}
		s := newTestServer(2, "500 Busy", tpl, fake)

		s.Accept(1000)

		Expect(s.slots[0]).To(BeNil())
		Expect(s.slots[1]).To(BeNil())
	})

	It("logs and returns without panicking on a hard Accept4 error", func() {
		tpl := conn.Template{ReadBufSize: 64, ArgcMax: 4}
		fake := &netfault.Fake{Real: &recordingSocket{}, FailAcceptOnCall: 1}
		s := newTestServer(2, "500 Busy", tpl, fake)

		Expect(func() { s.Accept(1000) }).NotTo(Panic())
		Expect(s.slots[0]).To(BeNil())
	})
})

var _ = Describe("closeIdleConnections", func() {
	It("closes and reclaims a connection whose idle time exceeds its timeout", func() {
		var closeReason conn.CloseReason
		tpl := conn.Template{
			ReadBufSize:   64,
			ArgcMax:       4,
			ClientTimeout: 10,
			CloseHandler: func(_ *conn.Connection, r conn.CloseReason) {
				closeReason = r
			},
		}
		rec := &recordingSocket{}
		fake := &netfault.Fake{Real: rec, AcceptResults: []netfault.AcceptResult{{FD: 11, Peer: "p"}}}
		s := newTestServer(2, "500 Busy", tpl, fake)

		s.Accept(1000) // connectedAt = lastActivity = 1000

		s.closeIdleConnections(1011) // idle 11s > timeout 10s

		Expect(closeReason).To(Equal(conn.ClientTimeout))
		Expect(s.slots[0]).To(BeNil())
		Expect(s.byFD).NotTo(HaveKey(11))
		Expect(rec.closed).To(Equal([]int{11}))
	})

	It("leaves a connection alone when ClientTimeout is zero", func() {
		tpl := conn.Template{ReadBufSize: 64, ArgcMax: 4, ClientTimeout: 0}
		fake := &netfault.Fake{
			Real:          &recordingSocket{},
			AcceptResults: []netfault.AcceptResult{{FD: 11, Peer: "p"}},
		}
		s := newTestServer(2, "500 Busy", tpl, fake)
		s.Accept(1000)

		s.closeIdleConnections(999999)

		Expect(s.slots[0]).NotTo(BeNil())
	})

	It("leaves a connection alone while still within its timeout budget", func() {
		tpl := conn.Template{ReadBufSize: 64, ArgcMax: 4, ClientTimeout: 30}
		fake := &netfault.Fake{
			Real:          &recordingSocket{},
			AcceptResults: []netfault.AcceptResult{{FD: 11, Peer: "p"}},
		}
		s := newTestServer(2, "500 Busy", tpl, fake)
		s.Accept(1000)

		s.closeIdleConnections(1020)

		Expect(s.slots[0]).NotTo(BeNil())
	})
})

var _ = Describe("Shutdown", func() {
	It("closes every occupied slot with ServerShutdown and closes the listener", func() {
		var reasons []conn.CloseReason
		tpl := conn.Template{
			ReadBufSize: 64,
			ArgcMax:     4,
			CloseHandler: func(_ *conn.Connection, r conn.CloseReason) {
				reasons = append(reasons, r)
			},
		}
		rec := &recordingSocket{}
		fake := &netfault.Fake{
			Real: rec,
			AcceptResults: []netfault.AcceptResult{
				{FD: 11, Peer: "a"},
				{FD: 12, Peer: "b"},
			},
		}
		s := newTestServer(2, "500 Busy", tpl, fake)
		s.Accept(1000)
		s.Accept(1000)

		s.Shutdown()

		Expect(reasons).To(Equal([]conn.CloseReason{conn.ServerShutdown, conn.ServerShutdown}))
		Expect(s.slots[0]).To(BeNil())
		Expect(s.slots[1]).To(BeNil())
		Expect(rec.closed).To(ContainElements(11, 12, 3))
	})

	It("is safe to call on an empty slot table", func() {
		tpl := conn.Template{ReadBufSize: 64, ArgcMax: 4}
		rec := &recordingSocket{}
		fake := &netfault.Fake{Real: rec}
		s := newTestServer(2, "500 Busy", tpl, fake)

		Expect(func() { s.Shutdown() }).NotTo(Panic())
		Expect(rec.closed).To(Equal([]int{3}))
	})
})
