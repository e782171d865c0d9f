// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/wandercone/hakofoundry/internal/obslog"
	"github.com/wandercone/hakofoundry/internal/scheduler"
)

// Subject roots for the §9 published-value abstraction.
const (
	SubjectSensorPrefix    = "thermal.sensor."
	SubjectWallAppliedFmt  = "thermal.wall.%d.applied"
	SubjectWallModeFmt     = "thermal.wall.%d.mode"
	SubjectDebounceDropped = "thermal.debounce.dropped"
	SubjectLinkStateFmt    = "thermal.link.%s.state"
)

// Bus is an embedded, in-process-only NATS server plus one client
// connection the core uses to publish. It carries no JetStream: every
// subject here is a fire-and-forget notification the UI boundary may or
// may not be listening to, never a durable queue the core depends on.
type Bus struct {
	config

	srv *server.Server
	nc  *nats.Conn
}

// New constructs a Bus. Call Start before Publish/Subscribe.
func New(opts ...Option) *Bus {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Bus{config: cfg}
}

// Start brings up the embedded server and the core's own client
// connection. It blocks until the server is ready for connections or the
// startup timeout elapses.
func (b *Bus) Start(ctx context.Context) error {
	opts := &server.Options{
		ServerName: b.serverName,
		DontListen: true,
		NoLog:      true,
		NoSigs:     true,
	}
	srv, err := server.NewServer(opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerCreationFailed, err)
	}
	b.srv = srv
	b.srv.SetLoggerV2(obslog.NewNATSLogger(b.logger), false, false, false)
	b.srv.Start()

	if !b.srv.ReadyForConnections(b.startupTimeout) {
		b.srv.Shutdown()
		return fmt.Errorf("%w: %v", ErrServerTimeout, b.startupTimeout)
	}

	nc, err := nats.Connect("", nats.InProcessServer(&connProvider{server: b.srv}))
	if err != nil {
		b.srv.Shutdown()
		return fmt.Errorf("connect core publisher: %w", err)
	}
	b.nc = nc

	b.logger.InfoContext(ctx, "event bus started", "server_name", b.serverName)
	return nil
}

// Close closes the core's connection and shuts the embedded server down.
func (b *Bus) Close() error {
	if b.nc != nil {
		b.nc.Close()
	}
	if b.srv != nil {
		b.srv.Shutdown()
	}
	return nil
}

// ConnProvider exposes a fresh in-process connection provider so other
// in-process components (a local UI server, say) can dial the same bus
// without going over the network.
func (b *Bus) ConnProvider() nats.InProcessConnProvider {
	return &connProvider{server: b.srv}
}

func (b *Bus) publish(subject string, data []byte) error {
	if b.nc == nil {
		return ErrNotRunning
	}
	return b.nc.Publish(subject, data)
}

// PublishSensor publishes a sensor's current reading under
// thermal.sensor.<qualified-name>.
func (b *Bus) PublishSensor(name string, celsius float64) error {
	return b.publish(SubjectSensorPrefix+name, []byte(fmt.Sprintf("%.1f", celsius)))
}

// PublishWallApplied publishes a wall's new last_applied PWM.
func (b *Bus) PublishWallApplied(wallID, pwm int) error {
	return b.publish(fmt.Sprintf(SubjectWallAppliedFmt, wallID), []byte(fmt.Sprintf("%d", pwm)))
}

// PublishWallMode publishes a wall's new mode.
func (b *Bus) PublishWallMode(wallID int, mode string) error {
	return b.publish(fmt.Sprintf(SubjectWallModeFmt, wallID), []byte(mode))
}

// PublishDebounceDropped implements scheduler.Publisher: it notifies the
// UI boundary that a manual update for drop.WallID was dropped in favor of
// a later value, carrying the value that got dropped and why.
func (b *Bus) PublishDebounceDropped(drop scheduler.DebounceDrop) {
	payload, err := json.Marshal(drop)
	if err != nil {
		b.logger.Error("marshal debounce drop", "error", err)
		return
	}
	_ = b.publish(SubjectDebounceDropped, payload)
}

// PublishLinkState publishes a powerboard link's connection state
// (closed/open/degraded, per internal/powerboard.LinkState).
func (b *Bus) PublishLinkState(location string, state string) error {
	return b.publish(fmt.Sprintf(SubjectLinkStateFmt, location), []byte(state))
}

// Subscribe wires a raw subject to a handler, for UI-side or test
// consumers that want a direct client rather than a fresh connection.
func (b *Bus) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if b.nc == nil {
		return nil, ErrNotRunning
	}
	return b.nc.Subscribe(subject, handler)
}
