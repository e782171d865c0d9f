// SPDX-License-Identifier: BSD-3-Clause

package obslog

import (
	"log"
	"log/slog"
)

// RedirectStdLog points the standard library's package-level log output at
// l, at Info level with no timestamp/prefix of its own (slog already
// stamps one). Anything still calling log.Printf underneath -- a
// dependency that predates slog, say -- lands in the same structured
// stream as everything else instead of writing bare lines to stderr.
func RedirectStdLog(l *slog.Logger) {
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(slog.NewLogLogger(l.Handler(), slog.LevelInfo).Writer())
}
