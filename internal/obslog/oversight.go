// SPDX-License-Identifier: BSD-3-Clause

package obslog

import (
	"fmt"
	"log/slog"

	"cirello.io/oversight/v2"
)

// NewOversightLogger adapts l to oversight.Logger, the supervision tree's
// restart/halt/stop event sink. Every child restart, halt, and stop the
// tree reports lands at Debug with subsystem=oversight, keeping its
// chatter out of the Info-level signal a chassis operator actually cares
// about (board links opening, walls changing mode). A nil l logs
// ErrOversightLogger and falls back to slog.Default rather than dropping
// that supervision chatter on the floor.
func NewOversightLogger(l *slog.Logger) oversight.Logger {
	if l == nil {
		slog.Default().Warn(ErrOversightLogger.Error())
		l = slog.Default()
	}
	return func(args ...any) {
		l.Debug(fmt.Sprint(args...), "subsystem", "oversight")
	}
}
