// SPDX-License-Identifier: BSD-3-Clause

// Package id mints the controller's own identity: a UUID that survives
// restarts, stored as a plain-text file under the config directory and
// created through pkg/file's atomic-create-or-read-back race so two
// thermald instances racing at first boot settle on the same ID.
package id
