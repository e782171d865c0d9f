// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"log/slog"
	"time"
)

const (
	defaultServerName      = "hakofoundry-thermal"
	defaultStartupTimeout  = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

type config struct {
	serverName      string
	startupTimeout  time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func defaultConfig() config {
	return config{
		serverName:      defaultServerName,
		startupTimeout:  defaultStartupTimeout,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          slog.Default(),
	}
}

// Option configures a Bus at New time.
type Option interface {
	apply(*config)
}

type serverNameOption struct{ name string }

func (o *serverNameOption) apply(c *config) { c.serverName = o.name }

// WithServerName overrides the embedded NATS server's advertised name.
func WithServerName(name string) Option {
	return &serverNameOption{name: name}
}

type startupTimeoutOption struct{ d time.Duration }

func (o *startupTimeoutOption) apply(c *config) { c.startupTimeout = o.d }

// WithStartupTimeout overrides how long Start waits for the embedded
// server to become ready for connections.
func WithStartupTimeout(d time.Duration) Option {
	return &startupTimeoutOption{d: d}
}

type loggerOption struct{ l *slog.Logger }

func (o *loggerOption) apply(c *config) { c.logger = o.l }

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return &loggerOption{l: l}
}
