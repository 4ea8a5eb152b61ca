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

// Package tokenize implements the shell-like argv tokenizer spec.md §4.3
// describes: whitespace-separated tokens, interchangeable single/double
// quoting, and backslash escaping, both in and out of quotes.
package tokenize

// Func is the signature of a pluggable tokenizer. line is the raw command
// line (without its terminator); argv has len(argv) == argcMax and is
// filled in place with sub-slices of line. On success argc <= len(argv)
// is returned with overflow false. When the line contains more tokens
// than len(argv), overflow is true and argc/argv contents are undefined,
// matching spec.md's "-1 on overflow" contract translated to Go's
// (count, ok) idiom.
type Func func(line []byte, argv [][]byte) (argc int, overflow bool)

// Default is the shell-like tokenizer installed by config.DefaultConnection.
// It is grounded byte-for-byte on original_source/cmdserv_tokenize.c's
// state machine (esc/quote/space flags), translated from in-place
// nul-termination to Go sub-slicing.
func Default(line []byte, argv [][]byte) (argc int, overflow bool) {
	var (
		esc   bool
		quote byte
		space = true
	)

	start := 0 // start offset of the token currently being written
	write := 0 // the in-progress token is line[start:write]

	newTokenAfterSpace := func(i int) bool {
		if !space {
			return true
		}
		if argc >= len(argv) {
			return false
		}
		start = i
		write = i
		space = false
		return true
	}

	closeToken := func() {
		if argc < len(argv) {
			argv[argc] = line[start:write]
			argc++
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case esc:
			if !newTokenAfterSpace(write) {
				return 0, true
			}
			line[write] = c
			write++
			esc = false

		case quote != 0:
			if !newTokenAfterSpace(write) {
				return 0, true
			}
			switch c {
			case quote:
				quote = 0
			case '\\':
				esc = true
			default:
				line[write] = c
				write++
			}

		default: // normal sequence
			switch {
			case isSpace(c):
				if !space {
					closeToken()
				}
				space = true
			case c == '\\':
				esc = true
			case c == '"' || c == '\'':
				quote = c
			default:
				if !newTokenAfterSpace(write) {
					return 0, true
				}
				line[write] = c
				write++
			}
		}
	}

	// A trailing unescaped backslash (esc still true here) has nothing
	// left to escape; SPEC_FULL.md §5.1 treats it as a literal backslash
	// appended to the in-progress token rather than dropping it. Callers
	// that want to log the condition can check TrailingBackslash(line)
	// themselves before calling Default.
	if esc {
		if newTokenAfterSpace(write) {
			line[write] = '\\'
			write++
		}
	}

	if !space || quote != 0 {
		closeToken()
	}

	return argc, false
}

// TrailingBackslash reports whether line, read with Default's quoting and
// escaping rules, ends while still inside an escape sequence, for callers
// that want to log the condition Default resolves silently. Default
// rewrites its input in place, so the check is meant for the line before
// it is tokenized. Exposed as a pure re-derivation instead of shared
// mutable state so Default stays safe for concurrent use.
func TrailingBackslash(line []byte) bool {
	esc := false
	quote := byte(0)
	for _, c := range line {
		if esc {
			esc = false
			continue
		}
		if quote != 0 {
			switch c {
			case quote:
				quote = 0
			case '\\':
				esc = true
			}
			continue
		}
		switch {
		case c == '\\':
			esc = true
		case c == '"' || c == '\'':
			quote = c
		}
	}
	return esc
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
