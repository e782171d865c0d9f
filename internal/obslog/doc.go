// SPDX-License-Identifier: BSD-3-Clause

// Package obslog provides the structured logging setup shared by every
// component of the thermal control plane. It fans a single slog.Logger out
// to a human-readable zerolog console writer, and supplies adapter loggers
// for the third-party subsystems (the NATS event bus, the oversight
// supervision tree) that expect their own logger interfaces.
//
// # Basic usage
//
//	logger := obslog.NewDefaultLogger(*debugFlag)
//	logger.InfoContext(ctx, "powerboard link opened", "board_location", 1)
//
// Every component in this module that logs takes a *slog.Logger at
// construction time; nothing here is reached through a package-level
// global.
//
// # Adapting third-party loggers
//
//	srv.SetLoggerV2(obslog.NewNATSLogger(logger), false, false, false)
//	sup := oversight.New(oversight.WithLogger(obslog.NewOversightLogger(logger)))
package obslog
