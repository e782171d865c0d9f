// SPDX-License-Identifier: BSD-3-Clause

// Package config implements the on-disk configuration store: four JSON
// documents (chassis layout, fan profiles, temperature sensors, fan
// control service state) loaded at startup, mutated in memory, and
// written back with a debounced atomic save.
//
// Each document tolerates a missing file by producing and persisting a
// default. Profiles, curves, and drive monitors carry stable UUID ids
// (github.com/google/uuid) as join keys; a loader migration assigns ids to
// any id-less records from older documents and rekeys drive-monitor maps
// whose keys are legacy display names to the curve id.
//
// Writes go through pkg/file's atomic temp-file-then-rename helpers and
// are coalesced: a burst of edits within the debounce window collapses to
// one write, with an explicit "save immediate" bypass for callers (like a
// mode transition) that must not be lost to a crash before the window
// elapses.
package config
