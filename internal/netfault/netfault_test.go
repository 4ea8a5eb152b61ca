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

package netfault_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/cmdserv/conn"
	"github.com/sabouaram/cmdserv/internal/netfault"
)

// stubReal is a minimal conn.Socket that never fails on its own, so every
// failure observed in these tests comes from the Fake's own injection
// logic rather than from the delegate.
type stubReal struct {
	recvN, sendN int
	closedFDs    []int
}

func (s *stubReal) Recv(_ int, buf []byte) (int, error) {
	s.recvN++
	return len(buf), nil
}

func (s *stubReal) Send(_ int, buf []byte) (int, error) {
	s.sendN++
	return len(buf), nil
}

func (s *stubReal) Close(fd int) error {
	s.closedFDs = append(s.closedFDs, fd)
	return nil
}

// stubAccepter additionally satisfies the unexported accepter interface
// Fake.Accept4 probes for once its scripted AcceptResults are exhausted.
type stubAccepter struct {
	stubReal
	fd   int
	peer string
}

func (s *stubAccepter) Accept4(int) (int, string, error) {
	return s.fd, s.peer, nil
}

var _ = Describe("Fake.Recv/Send/Close", func() {
	It("delegates to Real and counts calls when nothing is programmed to fail", func() {
		real := &stubReal{}
		f := &netfault.Fake{Real: real}

		n, err := f.Recv(5, make([]byte, 4))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(4))

		n, err = f.Send(5, []byte("abcd"))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(4))

		Expect(f.Close(5)).To(Succeed())
		Expect(real.recvN).To(Equal(1))
		Expect(real.sendN).To(Equal(1))
		Expect(real.closedFDs).To(Equal([]int{5}))
	})

	It("fails Recv only on the programmed call number, wrapping ErrInjected", func() {
		real := &stubReal{}
		f := &netfault.Fake{Real: real, FailRecvOnCall: 2}

		_, err := f.Recv(5, make([]byte, 1))
		Expect(err).NotTo(HaveOccurred())

		_, err = f.Recv(5, make([]byte, 1))
		Expect(errors.Is(err, netfault.ErrInjected)).To(BeTrue())

		_, err = f.Recv(5, make([]byte, 1))
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails Send only on the programmed call number", func() {
		real := &stubReal{}
		f := &netfault.Fake{Real: real, FailSendOnCall: 1}

		_, err := f.Send(5, []byte("x"))
		Expect(errors.Is(err, netfault.ErrInjected)).To(BeTrue())

		_, err = f.Send(5, []byte("x"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails Close only on the programmed call number", func() {
		real := &stubReal{}
		f := &netfault.Fake{Real: real, FailCloseOnCall: 2}

		Expect(f.Close(5)).To(Succeed())
		err := f.Close(5)
		Expect(errors.Is(err, netfault.ErrInjected)).To(BeTrue())
	})
})

var _ = Describe("Fake.Accept4", func() {
	It("consumes AcceptResults in order before falling through", func() {
		f := &netfault.Fake{
			AcceptResults: []netfault.AcceptResult{
				{FD: 10, Peer: "a"},
				{FD: 11, Peer: "b"},
			},
		}

		fd, peer, err := f.Accept4(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(fd).To(Equal(10))
		Expect(peer).To(Equal("a"))

		fd, peer, err = f.Accept4(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(fd).To(Equal(11))
		Expect(peer).To(Equal("b"))
	})

	It("returns ErrWouldBlock once scripted results are exhausted and Real is nil", func() {
		f := &netfault.Fake{AcceptResults: []netfault.AcceptResult{{FD: 10, Peer: "a"}}}

		_, _, _ = f.Accept4(3)
		_, _, err := f.Accept4(3)
		Expect(errors.Is(err, conn.ErrWouldBlock)).To(BeTrue())
	})

	It("delegates to Real's own Accept4 once scripted results are exhausted", func() {
		f := &netfault.Fake{Real: &stubAccepter{fd: 20, peer: "delegated"}}

		fd, peer, err := f.Accept4(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(fd).To(Equal(20))
		Expect(peer).To(Equal("delegated"))
	})

	It("returns ErrWouldBlock when Real does not implement Accept4", func() {
		f := &netfault.Fake{Real: &stubReal{}}

		_, _, err := f.Accept4(3)
		Expect(errors.Is(err, conn.ErrWouldBlock)).To(BeTrue())
	})

	It("fails only on the programmed call number, ahead of any scripted result", func() {
		f := &netfault.Fake{
			FailAcceptOnCall: 1,
			AcceptResults:    []netfault.AcceptResult{{FD: 10, Peer: "a"}},
		}

		_, _, err := f.Accept4(3)
		Expect(errors.Is(err, netfault.ErrInjected)).To(BeTrue())

		fd, _, err := f.Accept4(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(fd).To(Equal(10))
	})
})
