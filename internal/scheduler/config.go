// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import (
	"log/slog"
	"time"
)

const (
	defaultTelemetryInterval = 3 * time.Second
	defaultCurveInterval     = 2 * time.Second
)

type config struct {
	telemetryInterval time.Duration
	curveInterval     time.Duration
	automatic         bool
	logger            *slog.Logger
	publisher         Publisher
}

func defaultConfig() config {
	return config{
		telemetryInterval: defaultTelemetryInterval,
		curveInterval:     defaultCurveInterval,
		automatic:         true,
		logger:            slog.Default(),
		publisher:         noopPublisher{},
	}
}

// Option configures a Scheduler at New time.
type Option interface {
	apply(*config)
}

type telemetryIntervalOption struct{ d time.Duration }

func (o *telemetryIntervalOption) apply(c *config) { c.telemetryInterval = o.d }

// WithTelemetryInterval overrides the default 3s board/sensor/drive refresh
// period.
func WithTelemetryInterval(d time.Duration) Option {
	return &telemetryIntervalOption{d: d}
}

type curveIntervalOption struct{ d time.Duration }

func (o *curveIntervalOption) apply(c *config) { c.curveInterval = o.d }

// WithCurveInterval overrides the default 2s automatic curve evaluation
// period.
func WithCurveInterval(d time.Duration) Option {
	return &curveIntervalOption{d: d}
}

type automaticOption struct{ enabled bool }

func (o *automaticOption) apply(c *config) { c.automatic = o.enabled }

// WithAutomatic sets the initial value of the automatic-control flag that
// governs whether profile-derived targets are pushed. Manual walls are
// unaffected by this flag.
func WithAutomatic(enabled bool) Option {
	return &automaticOption{enabled: enabled}
}

type loggerOption struct{ l *slog.Logger }

func (o *loggerOption) apply(c *config) { c.logger = o.l }

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return &loggerOption{l: l}
}

type publisherOption struct{ p Publisher }

func (o *publisherOption) apply(c *config) { c.publisher = o.p }

// WithPublisher wires an event publisher (normally internal/eventbus) to
// receive debounce-dropped notifications.
func WithPublisher(p Publisher) Option {
	return &publisherOption{p: p}
}
