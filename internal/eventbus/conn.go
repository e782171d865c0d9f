// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"fmt"
	"net"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// connProvider bridges the embedded NATS server to in-process client
// connections, implementing nats.InProcessConnProvider.
type connProvider struct {
	server *server.Server
}

// InProcessConn waits for the embedded server to be ready and returns a
// direct in-process connection to it, bypassing the network stack
// entirely.
func (p *connProvider) InProcessConn() (net.Conn, error) {
	if p.server == nil {
		return nil, ErrNotRunning
	}
	if !p.server.ReadyForConnections(time.Minute) {
		return nil, ErrServerTimeout
	}
	conn, err := p.server.InProcessConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerCreationFailed, err)
	}
	return conn, nil
}
