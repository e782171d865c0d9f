// SPDX-License-Identifier: BSD-3-Clause

// Package eventbus is the §9 "published-value abstraction" for the UI
// boundary: an embedded NATS server (github.com/nats-io/nats-server/v2)
// that the core publishes readings and state changes to, and that a UI
// process subscribes to without ever reaching into the core's locks
// directly.
//
// Subjects:
//   - thermal.sensor.<qualified-name>  — a sensor reading changed
//   - thermal.wall.<id>.applied        — a wall's last_applied PWM changed
//   - thermal.wall.<id>.mode           — a wall's mode transitioned
//   - thermal.debounce.dropped         — a manual update was dropped (§4.6),
//     payload is a JSON {wall_id, dropped_value, reason} object
//   - thermal.link.<location>.state    — a powerboard link's connection state
//     transitioned (closed/open/degraded, §4.1)
package eventbus
