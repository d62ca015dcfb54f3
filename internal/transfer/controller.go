// Package transfer drives a single token transfer from request to
// terminal outcome.
//
// The controller validates the request, builds the contract call,
// submits it through the detected provider, and classifies failures for
// human-facing messages. It never polls the chain: a Succeeded state
// means the provider acknowledged the broadcast, not that the transfer
// settled.
package transfer

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/the-recircle-app/veconnect/internal/classify"
	"github.com/the-recircle-app/veconnect/internal/codec"
	"github.com/the-recircle-app/veconnect/internal/metrics"
	"github.com/the-recircle-app/veconnect/internal/provider"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// watchBuffer is the per-watcher channel capacity.
const watchBuffer = 16

// HandleSource yields the provider handle transfers are submitted
// through. Satisfied by the connect controller.
type HandleSource interface {
	Probe(ctx context.Context) (*provider.Handle, error)
}

// Request describes one user-initiated transfer. Amount is the
// user-facing decimal string; conversion to base units happens during
// validation.
type Request struct {
	Recipient string
	Amount    string
	Sender    string
	Comment   string
}

// Result acknowledges a submitted transfer.
//
// TxID identifies the broadcast transaction. Submission is NOT
// settlement: the transaction may still revert or never be included.
// Consumers that fulfill value against a transfer must confirm on-chain
// inclusion themselves before treating it as paid.
type Result struct {
	TxID string
}

// Controller drives token transfers through a detected provider.
type Controller struct {
	providers  HandleSource
	classifier *classify.Classifier
	log        *zap.Logger

	tokenContract string
	decimals      int

	mu        sync.Mutex
	state     State
	busy      bool
	watchers  map[int]chan State
	nextWatch int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClassifier overrides the error classification policy.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(c *Controller) { c.classifier = classifier }
}

// WithLogger sets the controller logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates a transfer controller sending tokens held by the contract
// at tokenContract, with the given fractional precision.
func New(providers HandleSource, tokenContract string, decimals int, opts ...Option) *Controller {
	c := &Controller{
		providers:     providers,
		classifier:    classify.Default(),
		log:           zap.NewNop(),
		tokenContract: tokenContract,
		decimals:      decimals,
		state:         State{Phase: PhaseIdle},
		watchers:      make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current transfer state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch subscribes to state transitions. The returned cancel function
// removes the subscription and closes the channel.
func (c *Controller) Watch() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextWatch
	c.nextWatch++
	ch := make(chan State, watchBuffer)
	c.watchers[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Submit drives one transfer to a terminal state. A Submit while another
// is outstanding fails with ErrBusy rather than queueing; provider calls
// against one handle are never concurrent.
//
// The request is fully validated before any provider call. The provider
// submission may suspend indefinitely on human approval; cancel ctx to
// abandon it. Failures are classified exactly once and published with
// the raw error preserved. No automatic retry: a failed transfer ends
// this lifecycle and a retry is a fresh Submit.
func (c *Controller) Submit(ctx context.Context, req Request) (*Result, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, vcerr.ErrBusy
	}
	c.busy = true
	// Each submission is a fresh lifecycle.
	c.state = State{Phase: c.state.Phase}
	c.transitionLocked(State{Phase: PhasePreparing})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	metrics.Global.RecordTransferSubmitted()

	data, err := c.prepare(req)
	if err != nil {
		// Invalid input never reaches the provider. Classified as
		// technical rather than through the keyword table: these are
		// caller bugs, not provider failures.
		c.fail(err, classify.Technical)
		return nil, err
	}

	c.mu.Lock()
	c.transitionLocked(State{Phase: PhaseSigning})
	c.mu.Unlock()

	handle, err := c.providers.Probe(ctx)
	if err != nil {
		c.fail(err, c.classifier.Classify(err))
		return nil, err
	}

	resp, err := handle.SubmitTransaction(ctx, provider.TransactionRequest{
		Clauses: []provider.Clause{{
			To:    c.tokenContract,
			Value: big.NewInt(0),
			Data:  data,
		}},
		Comment: req.Comment,
	})
	if err != nil {
		c.fail(err, c.classifier.Classify(err))
		return nil, err
	}
	if resp == nil || resp.TxID == "" {
		err := vcerr.ErrMissingTxID
		c.fail(err, c.classifier.Classify(err))
		return nil, err
	}

	c.mu.Lock()
	c.transitionLocked(State{Phase: PhaseSending})
	c.transitionLocked(State{Phase: PhaseConfirming, TxID: resp.TxID})
	// No on-chain wait happens here; Succeeded records the provider's
	// acknowledgement only. See Result.
	c.transitionLocked(State{Phase: PhaseSucceeded, TxID: resp.TxID})
	c.mu.Unlock()

	metrics.Global.RecordTransferSuccess()
	c.log.Info("transfer submitted",
		zap.String("txid", resp.TxID),
		zap.String("recipient", req.Recipient))
	return &Result{TxID: resp.TxID}, nil
}

// prepare validates the request and builds the contract call data.
func (c *Controller) prepare(req Request) ([]byte, error) {
	if strings.TrimSpace(req.Recipient) == "" {
		return nil, vcerr.ErrInvalidRecipient
	}
	if strings.TrimSpace(req.Sender) == "" {
		return nil, vcerr.WithDetails(vcerr.ErrInvalidAddress, map[string]string{
			"field": "sender",
		})
	}
	if _, err := codec.NormalizeAddress(req.Sender); err != nil {
		return nil, err
	}

	amount, err := codec.ParseAmount(req.Amount, c.decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, vcerr.WithDetails(vcerr.ErrInvalidAmount, map[string]string{
			"amount": req.Amount,
			"reason": "amount must be positive",
		})
	}

	return codec.TransferData(req.Recipient, amount)
}

// fail publishes the terminal failed state with its classified kind.
func (c *Controller) fail(err error, kind classify.Kind) {
	metrics.Global.RecordTransferFailure(kind.String())
	c.log.Warn("transfer failed",
		zap.String("kind", kind.String()),
		zap.Error(err))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitionLocked(State{Phase: PhaseFailed, Err: err, ErrKind: kind.String()})
}

// transitionLocked applies a state transition and notifies watchers.
// Callers hold c.mu.
func (c *Controller) transitionLocked(next State) {
	if err := validateTransition(c.state.Phase, next.Phase); err != nil {
		c.log.Error("refusing illegal transition",
			zap.String("from", c.state.Phase.String()),
			zap.String("to", next.Phase.String()))
		return
	}
	if c.state.Phase == next.Phase && c.state.TxID == next.TxID && c.state.ErrKind == next.ErrKind {
		return
	}
	c.log.Debug("transfer transition",
		zap.String("from", c.state.Phase.String()),
		zap.String("to", next.Phase.String()))
	c.state = next
	for _, ch := range c.watchers {
		select {
		case ch <- next:
		default:
		}
	}
}
