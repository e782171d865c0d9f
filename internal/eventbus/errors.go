// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import "errors"

var (
	// ErrServerCreationFailed wraps an underlying nats-server error from
	// server.NewServer.
	ErrServerCreationFailed = errors.New("embedded event bus server creation failed")
	// ErrServerTimeout indicates the embedded server did not become ready
	// for connections within the configured startup timeout.
	ErrServerTimeout = errors.New("embedded event bus server did not become ready in time")
	// ErrNotRunning is returned by Publish/Subscribe when called before
	// Start. After Close, the closed connection's own error is returned.
	ErrNotRunning = errors.New("event bus is not running")
)
