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

package strfmt

// LogSafeMaxLen is the maximum byte length of a LogSafe result, including
// the trailing "..." marker when the input was truncated.
const LogSafeMaxLen = 512

// LogSafe escapes s for safe inclusion in a single log line: bytes outside
// the printable-ASCII range 0x20-0x7E are rendered as a three-digit octal
// "\ooo" escape, and a literal backslash is doubled so the escape syntax
// stays unambiguous. The result is truncated to at most LogSafeMaxLen
// bytes total, with a trailing "..." appended when truncation occurred.
// Input whose whole escaped form fits LogSafeMaxLen is never truncated.
// Otherwise truncation only ever stops before a whole escape group, never
// in the middle of one: a group is appended only if it (plus, when bytes
// of s remain after it, the trailing "...") still fits the budget.
func LogSafe(s []byte) string {
	out := make([]byte, 0, len(s))

	total := 0
	for _, b := range s {
		switch {
		case b == '\\':
			total += 2
		case b >= 0x20 && b <= 0x7E:
			total++
		default:
			total += 4
		}
	}

	for i, b := range s {
		var group [4]byte
		var n int
		switch {
		case b == '\\':
			group[0], group[1] = '\\', '\\'
			n = 2
		case b >= 0x20 && b <= 0x7E:
			group[0] = b
			n = 1
		default:
			group[0] = '\\'
			group[1] = '0' + (b>>6)&0x7
			group[2] = '0' + (b>>3)&0x7
			group[3] = '0' + b&0x7
			n = 4
		}

		limit := LogSafeMaxLen
		if total > LogSafeMaxLen && i < len(s)-1 {
			limit -= 3 // room must remain for "..." if more input follows
		}
		if len(out)+n > limit {
			return string(append(out, '.', '.', '.'))
		}
		out = append(out, group[:n]...)
	}

	return string(out)
}
