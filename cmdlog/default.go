/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package cmdlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/cmdserv/loglevel"
)

// plainFormatter renders "cmdserv <severity>: <msg>\n", the exact wire
// format spec.md §4.4 requires of the default logger, on top of logrus's
// Entry pipeline instead of logrus's own (timestamp-prefixed) formatters.
type plainFormatter struct{}

func (plainFormatter) Format(e *logrus.Entry) ([]byte, error) {
	buf := make([]byte, 0, len(e.Message)+24)
	buf = append(buf, "cmdserv "...)
	buf = append(buf, e.Level.String()...)
	buf = append(buf, ':', ' ')
	buf = append(buf, e.Message...)
	buf = append(buf, '\n')
	return buf, nil
}

var levelToLogrus = [...]logrus.Level{
	loglevel.PanicLevel: logrus.PanicLevel,
	loglevel.FatalLevel: logrus.FatalLevel,
	loglevel.ErrorLevel: logrus.ErrorLevel,
	loglevel.WarnLevel:  logrus.WarnLevel,
	loglevel.InfoLevel:  logrus.InfoLevel,
	loglevel.DebugLevel: logrus.DebugLevel,
}

// Default returns a Sink that writes through a dedicated *logrus.Logger
// to w (os.Stderr if w is nil), one line per message, in the form
// "cmdserv <severity>: <message>". logrus.Logger.Log performs the actual
// write under its own mutex with a single io.Writer.Write call per entry,
// satisfying spec.md's "single atomic write" requirement without the
// library hand-rolling its own locking.
func Default(w io.Writer) Sink {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(plainFormatter{})
	l.SetLevel(logrus.TraceLevel)

	return func(_ any, lvl loglevel.Level, msg string) {
		if lvl == loglevel.NilLevel || int(lvl) >= len(levelToLogrus) {
			return
		}
		l.Log(levelToLogrus[lvl], msg)
	}
}
