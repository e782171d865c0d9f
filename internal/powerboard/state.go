// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import (
	"context"

	"github.com/qmuntal/stateless"
)

// LinkState is a powerboard link's observed connection health. It is
// purely for observability -- published on the event bus for the UI
// boundary -- and never gates a retry; the scheduler still attempts the
// next tick regardless of state.
type LinkState string

const (
	StateClosed   LinkState = "closed"
	StateOpen     LinkState = "open"
	StateDegraded LinkState = "degraded"
)

type linkTrigger string

const (
	triggerOpened    linkTrigger = "opened"
	triggerLinkError linkTrigger = "linkError"
	triggerRecovered linkTrigger = "recovered"
	triggerClose     linkTrigger = "close"
)

func newLinkMachine(l *Link) *stateless.StateMachine {
	m := stateless.NewStateMachine(StateClosed)
	m.Configure(StateClosed).
		Permit(triggerOpened, StateOpen)
	m.Configure(StateOpen).
		Permit(triggerLinkError, StateDegraded).
		Permit(triggerClose, StateClosed)
	m.Configure(StateDegraded).
		Permit(triggerRecovered, StateOpen).
		PermitReentry(triggerLinkError).
		Permit(triggerClose, StateClosed)
	m.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		if l.onStateChange == nil {
			return
		}
		if dest, ok := t.Destination.(LinkState); ok {
			l.onStateChange(dest)
		}
	})
	return m
}

// noteRoundTripResult feeds a command's outcome into the link state
// machine: a failure while the link is already open or degraded marks it
// degraded (repeated failures simply re-enter degraded); a success while
// degraded marks it recovered. A failure during the initial handshake,
// before the link has ever reached open, is left alone -- Open itself
// reports that failure to its caller and the Link is discarded.
func (l *Link) noteRoundTripResult(ctx context.Context, err error) {
	state, _ := l.machine.State(ctx)
	s, _ := state.(LinkState)
	switch {
	case err != nil && s != StateClosed:
		_ = l.machine.FireCtx(ctx, triggerLinkError)
	case err == nil && s == StateDegraded:
		_ = l.machine.FireCtx(ctx, triggerRecovered)
	}
}

// State returns the link's current connection state.
func (l *Link) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, _ := l.machine.State(context.Background())
	s, _ := state.(LinkState)
	return s
}
