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

	"github.com/sabouaram/cmdserv/conn"
)

// Adapter satisfies conn.Socket over this package's raw syscalls,
// translating ErrWouldBlock to conn's own sentinel so conn.Read never
// needs to import rawsock.
type Adapter struct{}

func (Adapter) Recv(fd int, buf []byte) (int, error) {
	n, err := Recv(fd, buf)
	if errors.Is(err, ErrWouldBlock) {
		return n, conn.ErrWouldBlock
	}
	return n, err
}

func (Adapter) Send(fd int, buf []byte) (int, error) {
	return Send(fd, buf)
}

func (Adapter) Close(fd int) error {
	return Close(fd)
}

// Accept4 satisfies cmdserver.Syscalls in addition to conn.Socket, so one
// Adapter value serves both the listener and every accepted connection.
func (Adapter) Accept4(listenFD int) (int, string, error) {
	fd, peer, err := Accept4(listenFD)
	if errors.Is(err, ErrWouldBlock) {
		return fd, peer, conn.ErrWouldBlock
	}
	return fd, peer, err
}

var _ conn.Socket = Adapter{}
