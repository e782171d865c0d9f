// SPDX-License-Identifier: BSD-3-Clause

package obslog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats-server/v2/server"
)

// natsLogger adapts a *slog.Logger to the embedded NATS server's Logger
// interface. Every severity folds through one emit call tagged with its
// original NATS level name, rather than six near-identical methods each
// re-deriving the same subsystem/level attributes.
type natsLogger struct {
	l *slog.Logger
}

func (n *natsLogger) emit(level slog.Level, natsLevel, format string, v ...any) {
	n.l.Log(context.Background(), level, fmt.Sprintf(format, v...), "subsystem", "nats", "nats_level", natsLevel)
}

func (n *natsLogger) Fatalf(format string, v ...interface{}) {
	n.emit(slog.LevelError, "fatal", format, v...)
}

func (n *natsLogger) Errorf(format string, v ...interface{}) {
	n.emit(slog.LevelError, "error", format, v...)
}

func (n *natsLogger) Warnf(format string, v ...interface{}) {
	n.emit(slog.LevelWarn, "warn", format, v...)
}

func (n *natsLogger) Noticef(format string, v ...interface{}) {
	n.emit(slog.LevelInfo, "notice", format, v...)
}

func (n *natsLogger) Debugf(format string, v ...interface{}) {
	n.emit(slog.LevelDebug, "debug", format, v...)
}

func (n *natsLogger) Tracef(format string, v ...interface{}) {
	n.emit(slog.LevelDebug, "trace", format, v...)
}

// NewNATSLogger adapts l to the embedded NATS server's Logger interface, so
// the event bus's server and the rest of the daemon share one structured
// log sink instead of the server writing its own unstructured lines. A nil
// l falls back to slog.Default rather than panicking partway through
// eventbus.Bus.Start; ErrNATSLogger is logged so the fallback isn't silent.
func NewNATSLogger(l *slog.Logger) server.Logger {
	if l == nil {
		slog.Default().Warn(ErrNATSLogger.Error())
		l = slog.Default()
	}
	return &natsLogger{l: l}
}
