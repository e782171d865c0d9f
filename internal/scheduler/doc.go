// SPDX-License-Identifier: BSD-3-Clause

// Package scheduler implements the reconciliation loop that ties the rest
// of the control plane together: pulling fresh board telemetry, refreshing
// sensors and drive monitors, recomputing fan wall targets, and pushing
// only the deltas back to the boards.
//
// A tick proceeds in a fixed order (pull, sensors, drives, targets, apply)
// so that steps 2-5 observe one consistent snapshot of readings, but the
// per-board pull within step 1 is fanned out with
// github.com/arunsworld/nursery since boards make no ordering promise
// relative to each other.
//
// Two independent per-board locks exist: one skips a tick's pull for a
// board whose previous pull is still outstanding (no queueing), the other
// debounces UI-driven manual slider writes by dropping a request if one is
// already in flight for that board.
package scheduler
