package transfer

import (
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// Phase is the transfer lifecycle phase.
type Phase string

// Transfer phases.
const (
	PhaseIdle       Phase = "idle"
	PhasePreparing  Phase = "preparing"
	PhaseSigning    Phase = "signing"
	PhaseSending    Phase = "sending"
	PhaseConfirming Phase = "confirming"

	// PhaseSucceeded means the provider acknowledged the broadcast with a
	// transaction id. It says nothing about on-chain inclusion; see
	// Result.
	PhaseSucceeded Phase = "succeeded"

	PhaseFailed Phase = "failed"
)

// String returns the phase identifier string.
func (p Phase) String() string {
	return string(p)
}

// legalTransitions defines the allowed phase transitions. Succeeded and
// Failed are terminal for one request; a retry starts a fresh lifecycle,
// so both may re-enter Preparing.
var legalTransitions = map[Phase]map[Phase]bool{
	PhaseIdle: {
		PhasePreparing: true,
	},
	PhasePreparing: {
		PhaseSigning: true,
		PhaseFailed:  true,
	},
	PhaseSigning: {
		PhaseSending: true,
		PhaseFailed:  true,
	},
	PhaseSending: {
		PhaseConfirming: true,
		PhaseFailed:     true,
	},
	PhaseConfirming: {
		PhaseSucceeded: true,
		PhaseFailed:    true,
	},
	PhaseSucceeded: {
		PhasePreparing: true,
	},
	PhaseFailed: {
		PhasePreparing: true,
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

// State is a snapshot of the transfer, delivered to watchers on every
// transition. TxID is set only from Confirming onward.
type State struct {
	Phase   Phase
	TxID    string
	Err     error  // raw failure, preserved for diagnostics
	ErrKind string // classified kind of Err
}
