// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import "time"

type config struct {
	baudRate      int
	readTimeout   time.Duration
	onStateChange func(LinkState)
}

func defaultConfig() config {
	return config{
		baudRate:    9600,
		readTimeout: readTimeout,
	}
}

// Option configures a Link at Open time.
type Option interface {
	apply(*config)
}

type baudRateOption struct {
	rate int
}

func (o *baudRateOption) apply(c *config) {
	c.baudRate = o.rate
}

// WithBaudRate overrides the default 9600 baud rate. Only a board running
// non-stock firmware would need this.
func WithBaudRate(rate int) Option {
	return &baudRateOption{rate: rate}
}

type readTimeoutOption struct {
	timeout time.Duration
}

func (o *readTimeoutOption) apply(c *config) {
	c.readTimeout = o.timeout
}

// WithReadTimeout overrides the default 2s serial read timeout.
func WithReadTimeout(timeout time.Duration) Option {
	return &readTimeoutOption{timeout: timeout}
}

type stateChangeOption struct {
	fn func(LinkState)
}

func (o *stateChangeOption) apply(c *config) { c.onStateChange = o.fn }

// WithStateChange registers a callback invoked on every connection state
// transition (closed/open/degraded), for publishing link health to an
// external observer such as the event bus.
func WithStateChange(fn func(LinkState)) Option {
	return &stateChangeOption{fn: fn}
}
