// SPDX-License-Identifier: BSD-3-Clause

package obslog

import (
	"log/slog"

	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// NewDefaultLogger creates a structured logger that writes human-readable
// console output via zerolog. Debug-level logging is enabled when debug is
// true; otherwise the floor is Info, matching the CLI "-debug" flag.
func NewDefaultLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	zeroLogger := zerolog.
		New(zerolog.NewConsoleWriter()).
		With().
		Timestamp().
		Logger()

	return slog.New(slogmulti.Fanout(
		slogzerolog.Option{Level: level, Logger: &zeroLogger}.NewZerologHandler(),
	))
}
