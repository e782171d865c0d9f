// SPDX-License-Identifier: BSD-3-Clause

package config

import "errors"

var (
	// ErrUnknownDocument is returned by SaveImmediate for a document name
	// the store doesn't recognize.
	ErrUnknownDocument = errors.New("unknown configuration document")
	// ErrValidation indicates a caller-supplied mutation violates a
	// document invariant (e.g. a curve with fewer than two points) and was
	// rejected; the previous in-memory state is left unchanged.
	ErrValidation = errors.New("configuration validation failed")
)
