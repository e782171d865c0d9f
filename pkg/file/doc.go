// SPDX-License-Identifier: BSD-3-Clause

// Package file provides the write-temp-then-rename primitive internal/config
// builds its four configuration documents and credential blobs on top of: a
// reader must never observe a half-written layout.json or sensors.json,
// whether the write wins the race against a crash or against a concurrent
// reader.
//
// AtomicCreateFile fails outright (ErrFileAlreadyExists) rather than
// overwrite, for the one-time identity files under pkg/id. AtomicUpdateFile
// preserves the original content on any failure before the rename, for the
// documents internal/config rewrites on every debounced save.
package file
