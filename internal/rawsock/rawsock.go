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

// Package rawsock wraps the handful of raw, non-blocking BSD-socket
// syscalls the single-threaded multiplexer in cmdserver needs: a listener
// built by hand (socket/setsockopt/bind/listen), non-blocking accept, and
// a level-triggered select(2) readiness wait. It exists because spec.md
// §4.1 requires a manual select loop, which net.Listener cannot expose.
package rawsock

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by Recv/Accept4 when the operation would
// otherwise block; callers should treat it as "nothing ready yet", not a
// failure.
var ErrWouldBlock = errors.New("rawsock: would block")

// Listen builds a non-blocking IPv6 any-address stream listener bound to
// port with SO_REUSEADDR set and the given backlog, per spec.md §4.1
// "Construction".
func Listen(port, backlog int) (fd int, err error) {
	fd, err = unix.Socket(unix.AF_INET6, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("rawsock: socket: %w", err)
	}

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("rawsock: setsockopt SO_REUSEADDR: %w", err)
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("rawsock: set nonblocking: %w", err)
	}

	sa := &unix.SockaddrInet6{Port: port}
	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("rawsock: bind :%d: %w", port, err)
	}

	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("rawsock: listen: %w", err)
	}

	return fd, nil
}

// Accept4 accepts one pending connection off listenFD, returning a
// non-blocking client fd and its numeric "host:port" peer string.
// ErrWouldBlock is returned when the backlog is empty.
func Accept4(listenFD int) (fd int, peer string, err error) {
	nfd, sa, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return -1, "", ErrWouldBlock
		}
		return -1, "", fmt.Errorf("rawsock: accept4: %w", err)
	}
	return nfd, peerString(sa), nil
}

func peerString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		host := ""
		for i := 0; i < len(a.Addr); i += 2 {
			if i > 0 {
				host += ":"
			}
			host += strconv.FormatUint(uint64(a.Addr[i])<<8|uint64(a.Addr[i+1]), 16)
		}
		return "[" + host + "]:" + strconv.Itoa(a.Port)
	default:
		return "unknown"
	}
}

// Recv issues one non-blocking read(2), returning ErrWouldBlock on
// EAGAIN/EWOULDBLOCK/EINTR (spec.md §4.2 "ignored" transient signals) so
// the caller can distinguish "try again later" from a fatal error.
func Recv(fd int, buf []byte) (n int, err error) {
	n, err = unix.Read(fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return 0, ErrWouldBlock
		}
		return 0, fmt.Errorf("rawsock: read: %w", err)
	}
	return n, nil
}

// Send issues one best-effort write(2) with MSG_NOSIGNAL so a peer that
// already closed its side cannot raise SIGPIPE in this process (spec.md
// §3 "SIGPIPE suppressed"). It never retries a short write.
func Send(fd int, buf []byte) (n int, err error) {
	n, err = unix.SendmsgN(fd, buf, nil, nil, unix.MSG_NOSIGNAL)
	if err != nil {
		return n, fmt.Errorf("rawsock: send: %w", err)
	}
	return n, nil
}

// Close closes fd, ignoring EBADF (already closed).
func Close(fd int) error {
	if err := unix.Close(fd); err != nil && !errors.Is(err, unix.EBADF) {
		return fmt.Errorf("rawsock: close: %w", err)
	}
	return nil
}
