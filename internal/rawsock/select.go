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

package rawsock

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// ErrInterrupted is returned by Select when the underlying select(2) call
// was interrupted by a signal (EINTR), distinct from a plain timeout so
// callers can log it separately (spec.md §4.1 "on EINTR log at debug and
// return").
var ErrInterrupted = errors.New("rawsock: select interrupted")

// ReadSet is a read-readiness fd set builder. Zero value is empty.
type ReadSet struct {
	fds   []int
	maxFD int
}

// Reset empties the set.
func (s *ReadSet) Reset() {
	s.fds = s.fds[:0]
	s.maxFD = 0
}

// Add registers fd for read readiness.
func (s *ReadSet) Add(fd int) {
	s.fds = append(s.fds, fd)
	if fd > s.maxFD {
		s.maxFD = fd
	}
}

// Select waits up to timeout for any registered fd to become
// read-ready, per spec.md §4.1: "select mutates its fd-set and timeout
// arguments, pass copies" — a fresh unix.FdSet and unix.Timeval are built
// from s on every call, never reused across calls. It returns the subset
// of fds that were ready. EINTR is reported as ErrInterrupted, distinct
// from a plain timeout, so the caller can log it at debug and retry on
// the next iteration, matching "on EINTR log at debug and return" (§4.1).
func (s *ReadSet) Select(timeout time.Duration) (ready []int, err error) {
	var set unix.FdSet
	for _, fd := range s.fds {
		fdSet(&set, fd)
	}

	tv := unix.NsecToTimeval(timeout.Nanoseconds())

	n, err := unix.Select(s.maxFD+1, &set, nil, nil, &tv)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, ErrInterrupted
		}
		return nil, fmt.Errorf("rawsock: select: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	ready = make([]int, 0, n)
	for _, fd := range s.fds {
		if fdIsSet(&set, fd) {
			ready = append(ready, fd)
		}
	}
	return ready, nil
}

// fdSet/fdIsSet replace the FD_SET/FD_ISSET macros unix.FdSet has no Go
// method for; the layout (an array of int64 words) matches every
// unix.FdSet on the platforms x/sys/unix targets.
func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
