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

// Package netfault is the test-only fault-injection shim spec.md §9
// calls for: a table of programmed failures that can force the Nth call
// to accept/recv/send/close to fail, so error paths that a live kernel
// rarely produces on demand (ENOMEM, a flaky peer, a dying listener) are
// still reachable from a test. It is never imported by non-test code.
package netfault

import (
	"errors"
	"fmt"

	"github.com/sabouaram/cmdserv/conn"
)

// ErrInjected is wrapped into every fault this shim produces, so tests
// can assert on the failure's origin with errors.Is.
var ErrInjected = errors.New("netfault: injected failure")

// Fake implements both conn.Socket and cmdserver.Syscalls, delegating to
// a real conn.Socket (usually rawsock.Adapter{}) except on programmed
// call numbers.
type Fake struct {
	Real conn.Socket

	recvCalls   int
	sendCalls   int
	closeCalls  int
	acceptCalls int

	FailRecvOnCall   int // 1-based; 0 disables
	FailSendOnCall   int
	FailCloseOnCall  int
	FailAcceptOnCall int

	// AcceptResults lets a test script a sequence of (fd, peer) pairs
	// returned by Accept4 when it isn't failing, independent of a real
	// listener.
	AcceptResults []AcceptResult
	acceptIdx     int
}

// AcceptResult is one scripted non-failing Accept4 return.
type AcceptResult struct {
	FD   int
	Peer string
}

func (f *Fake) Recv(fd int, buf []byte) (int, error) {
	f.recvCalls++
	if f.FailRecvOnCall != 0 && f.recvCalls == f.FailRecvOnCall {
		return 0, fmt.Errorf("%w: recv call %d", ErrInjected, f.recvCalls)
	}
	return f.Real.Recv(fd, buf)
}

func (f *Fake) Send(fd int, buf []byte) (int, error) {
	f.sendCalls++
	if f.FailSendOnCall != 0 && f.sendCalls == f.FailSendOnCall {
		return 0, fmt.Errorf("%w: send call %d", ErrInjected, f.sendCalls)
	}
	return f.Real.Send(fd, buf)
}

func (f *Fake) Close(fd int) error {
	f.closeCalls++
	if f.FailCloseOnCall != 0 && f.closeCalls == f.FailCloseOnCall {
		return fmt.Errorf("%w: close call %d", ErrInjected, f.closeCalls)
	}
	return f.Real.Close(fd)
}

// Accept4 satisfies cmdserver.Syscalls. When AcceptResults is non-empty
// it is consumed in order instead of delegating to Real, letting a test
// drive admission control without a real listening socket.
func (f *Fake) Accept4(listenFD int) (int, string, error) {
	f.acceptCalls++
	if f.FailAcceptOnCall != 0 && f.acceptCalls == f.FailAcceptOnCall {
		return -1, "", fmt.Errorf("%w: accept call %d", ErrInjected, f.acceptCalls)
	}
	if f.acceptIdx < len(f.AcceptResults) {
		r := f.AcceptResults[f.acceptIdx]
		f.acceptIdx++
		return r.FD, r.Peer, nil
	}
	if f.Real == nil {
		return -1, "", conn.ErrWouldBlock
	}
	type accepter interface {
		Accept4(int) (int, string, error)
	}
	if a, ok := f.Real.(accepter); ok {
		return a.Accept4(listenFD)
	}
	return -1, "", conn.ErrWouldBlock
}

var _ conn.Socket = (*Fake)(nil)
