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

// Package strfmt provides the two static-buffer-style formatters spec.md
// §4.4 calls for: a human-readable uptime/idle duration string, and a
// printable-ASCII escaper for logging arbitrary client-controlled bytes.
package strfmt

import (
	"strconv"
	"time"
)

const maxReasonableDays = 3650000 // ~10,000 years; beyond this we print "?d"

// Duration wraps a time.Duration the way the teacher's duration package
// wraps it, but formats to spec.md's "[-]Dd HH:MM:SS" / "HH:MM:SS" shape
// instead of the teacher's "NdNhNmNs" shape.
type Duration time.Duration

// Since returns the Duration between begin and end (end - begin), which
// may be negative if end precedes begin.
func Since(begin, end time.Time) Duration {
	return Duration(end.Sub(begin))
}

// String renders "[-]Dd HH:MM:SS", omitting the day segment entirely when
// the day count is zero. A day count too large to format meaningfully
// renders as "?d HH:MM:SS". Not re-entrant with itself only in the sense
// that, like the C original, callers should treat the returned string as
// consumed before the next call on the same goroutine — in Go this
// allocates fresh memory per call, so it is in fact safe for concurrent
// use; the non-reentrancy language in spec.md describes the C original's
// static buffer, which this port does not reproduce.
func (d Duration) String() string {
	neg := d < 0
	td := time.Duration(d)
	if neg {
		td = -td
	}

	totalSeconds := int64(td / time.Second)
	days := totalSeconds / 86400
	rem := totalSeconds % 86400
	hh := rem / 3600
	mm := (rem % 3600) / 60
	ss := rem % 60

	var out []byte
	if neg {
		out = append(out, '-')
	}

	switch {
	case days > maxReasonableDays:
		out = append(out, "?d "...)
	case days > 0:
		out = append(out, strconv.FormatInt(days, 10)...)
		out = append(out, "d "...)
	}

	out = append(out, pad2(hh)...)
	out = append(out, ':')
	out = append(out, pad2(mm)...)
	out = append(out, ':')
	out = append(out, pad2(ss)...)

	return string(out)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
