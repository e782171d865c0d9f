// SPDX-License-Identifier: BSD-3-Clause

// Package powerboard implements the serial link to a chassis powerboard: a
// microcontroller endpoint reachable over a 9600-8N1 line that accepts
// single-line ASCII commands and replies with a single ASCII line.
//
// A Link owns exactly one serial port and serializes every request behind a
// binary mutex — one write, one read, never interleaved. Firmware and
// hardware revision quirks (byte inversion, argument reordering, per-
// revision wattage calibration) are resolved inside the Link so callers
// only ever see calibrated percentages, RPM, and watts.
//
// # Basic usage
//
//	link, err := powerboard.Open(ctx, "/dev/ttyUSB0", logger)
//	if err != nil {
//		return fmt.Errorf("open powerboard: %w", err)
//	}
//	defer link.Close()
//
//	if err := link.UpdateFanSpeed(ctx, 40, 60, 80); err != nil {
//		var linkErr *powerboard.LinkError
//		if errors.As(err, &linkErr) {
//			logger.Warn("transient link failure", "err", linkErr)
//		}
//	}
//
// Connection loss is recoverable without restarting the owning process: a
// failed Link can simply be discarded and a new one opened on the same
// port.
package powerboard
