package connect

import (
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// Phase is the connection lifecycle phase.
type Phase string

// Connection phases.
const (
	PhaseIdle        Phase = "idle"
	PhaseProbing     Phase = "probing"
	PhaseReady       Phase = "ready"
	PhaseUnavailable Phase = "unavailable"
	PhaseConnecting  Phase = "connecting"
	PhaseConnected   Phase = "connected"

	// PhaseConnectedUnverified is the optimistic state restored from the
	// address store at startup. It must be reconciled: probing either
	// confirms a provider is present or corrects to Unavailable. It is a
	// distinct phase so the reconciliation is a visible transition, not
	// an implicit race.
	PhaseConnectedUnverified Phase = "connected_unverified"

	// PhaseErrored is a connection-attempt failure. Recovery requires an
	// explicit Connect retry or a Disconnect reset.
	PhaseErrored Phase = "errored"
)

// String returns the phase identifier string.
func (p Phase) String() string {
	return string(p)
}

// legalTransitions defines the allowed phase transitions.
// Each key is a "from" phase; the value is the set of valid "to" phases.
var legalTransitions = map[Phase]map[Phase]bool{
	PhaseIdle: {
		PhaseProbing: true,
	},
	PhaseProbing: {
		PhaseReady:       true,
		PhaseUnavailable: true,
		PhaseIdle:        true, // probe cancelled
	},
	PhaseReady: {
		PhaseConnecting: true,
		PhaseIdle:       true,
	},
	PhaseUnavailable: {
		PhaseProbing: true,
		PhaseIdle:    true,
	},
	PhaseConnecting: {
		PhaseConnected: true,
		PhaseErrored:   true,
		PhaseIdle:      true, // disconnected mid-attempt
	},
	PhaseConnected: {
		PhaseIdle: true,
	},
	PhaseConnectedUnverified: {
		PhaseUnavailable: true, // reconciliation found no provider
		PhaseConnecting:  true, // explicit re-authentication
		PhaseIdle:        true,
	},
	PhaseErrored: {
		PhaseConnecting: true, // explicit retry only
		PhaseProbing:    true,
		PhaseIdle:       true,
	},
}

// validateTransition checks whether moving from one phase to another is
// legal. Same-phase moves are allowed as no-ops.
func validateTransition(from, to Phase) error {
	if from == to {
		return nil
	}
	if legalTransitions[from][to] {
		return nil
	}
	return vcerr.WithDetails(vcerr.ErrInvalidTransition, map[string]string{
		"from": from.String(),
		"to":   to.String(),
	})
}

// State is a snapshot of the connection, delivered to watchers on every
// transition.
type State struct {
	Phase   Phase
	Address string // set only in Connected / ConnectedUnverified
	Err     error  // last connection failure, raw
	ErrKind string // classified kind of Err, for human-facing messages
}
