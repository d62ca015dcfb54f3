// Package connect drives the user-facing connect/disconnect lifecycle.
//
// The controller owns one ConnectionState per session: it probes for a
// wallet provider, authenticates through an identity certificate, caches
// the resulting address for opportunistic reuse on the next start, and
// publishes every phase transition to watchers.
package connect

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/the-recircle-app/veconnect/internal/classify"
	"github.com/the-recircle-app/veconnect/internal/identity"
	"github.com/the-recircle-app/veconnect/internal/metrics"
	"github.com/the-recircle-app/veconnect/internal/provider"
	"github.com/the-recircle-app/veconnect/internal/store"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// connectPurpose is the consent text shown for the connection certificate.
const connectPurpose = "connect wallet"

// watchBuffer is the per-watcher channel capacity. A watcher that falls
// this far behind loses intermediate transitions, never the goroutine.
const watchBuffer = 16

// Controller orchestrates provider discovery and identity authentication.
type Controller struct {
	registry   *provider.Registry
	session    *identity.Session
	addresses  store.AddressStore
	classifier *classify.Classifier
	probeOpts  provider.ProbeOptions
	log        *zap.Logger

	probes singleflight.Group

	mu         sync.Mutex
	state      State
	handle     *provider.Handle
	generation uint64 // bumped on Disconnect; invalidates in-flight work
	connecting bool
	watchers   map[int]chan State
	nextWatch  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithProbeOptions overrides the probe budget.
func WithProbeOptions(opts provider.ProbeOptions) Option {
	return func(c *Controller) { c.probeOpts = opts }
}

// WithClassifier overrides the error classification policy.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(c *Controller) { c.classifier = classifier }
}

// WithLogger sets the controller logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates a connection controller. If the address store holds a
// previously-seen address, the controller starts in ConnectedUnverified
// with that address; the optimistic state is corrected by the next probe.
func New(registry *provider.Registry, session *identity.Session, addresses store.AddressStore, opts ...Option) *Controller {
	c := &Controller{
		registry:   registry,
		session:    session,
		addresses:  addresses,
		classifier: classify.Default(),
		probeOpts:  provider.DefaultProbeOptions(),
		log:        zap.NewNop(),
		state:      State{Phase: PhaseIdle},
		watchers:   make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}

	if conn, ok, err := addresses.Load(); err != nil {
		c.log.Warn("ignoring unreadable address store", zap.Error(err))
	} else if ok {
		c.state = State{Phase: PhaseConnectedUnverified, Address: conn.Address}
		c.log.Debug("restored cached address", zap.String("address", conn.Address))
	}

	return c
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch subscribes to state transitions. The returned cancel function
// removes the subscription and closes the channel; it must be called to
// release the watcher.
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

// Probe discovers a wallet provider within the configured budget.
// Concurrent calls join the probe already in flight instead of starting a
// duplicate timer. After the probe resolves, an optimistic
// ConnectedUnverified state is reconciled: no provider means Unavailable.
func (c *Controller) Probe(ctx context.Context) (*provider.Handle, error) {
	c.mu.Lock()
	if c.handle != nil {
		handle := c.handle
		c.mu.Unlock()
		return handle, nil
	}
	if c.state.Phase == PhaseConnecting {
		c.mu.Unlock()
		return nil, vcerr.ErrBusy
	}
	gen := c.generation
	// The optimistic restored state stays visible while we reconcile it.
	if c.state.Phase != PhaseConnectedUnverified {
		c.transitionLocked(State{Phase: PhaseProbing})
	}
	c.mu.Unlock()

	result, err, _ := c.probes.Do("probe", func() (any, error) {
		metrics.Global.RecordProbe()
		return c.registry.Probe(ctx, c.probeOpts)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		// Disconnected while probing; the result belongs to a dead session.
		return nil, vcerr.ErrNotConnected
	}

	if err != nil {
		metrics.Global.RecordProbeMiss()
		if ctx.Err() != nil {
			c.transitionLocked(State{Phase: PhaseIdle})
			return nil, ctx.Err()
		}
		c.transitionLocked(State{Phase: PhaseUnavailable})
		return nil, err
	}

	handle := result.(*provider.Handle)
	c.handle = handle
	if c.state.Phase != PhaseConnectedUnverified {
		c.transitionLocked(State{Phase: PhaseReady})
	}
	return handle, nil
}

// Connect authenticates through the detected provider and publishes the
// verified address. Probing happens implicitly when no provider has been
// detected yet. A Connect while another is outstanding fails with ErrBusy
// rather than queueing.
//
// The authenticate call can suspend indefinitely on human approval;
// cancelling ctx abandons the attempt. A Disconnect issued while waiting
// wins: the late result is dropped and no Connected transition occurs.
func (c *Controller) Connect(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return "", vcerr.ErrBusy
	}
	c.mu.Unlock()

	handle, err := c.Probe(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return "", vcerr.ErrBusy
	}
	if err := validateTransition(c.state.Phase, PhaseConnecting); err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.connecting = true
	gen := c.generation
	c.transitionLocked(State{Phase: PhaseConnecting})
	c.mu.Unlock()

	ident, authErr := c.session.Authenticate(ctx, handle, connectPurpose)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.connecting = false

	if c.generation != gen {
		// Disconnected while the wallet UI was open. Whatever the user
		// eventually decided, this session is over; no transition.
		c.log.Debug("dropping stale authentication result")
		return "", vcerr.ErrNotConnected
	}

	if authErr != nil {
		metrics.Global.RecordAuthFailure()
		kind := c.classifier.Classify(authErr)
		c.transitionLocked(State{Phase: PhaseErrored, Err: authErr, ErrKind: kind.String()})
		return "", authErr
	}

	metrics.Global.RecordAuthSuccess()
	if err := c.addresses.Save(store.Connection{Address: ident.Address, SavedAt: time.Now().UTC()}); err != nil {
		// A failed cache write only costs next session's optimistic start.
		c.log.Warn("failed to persist address", zap.Error(err))
	}
	c.transitionLocked(State{Phase: PhaseConnected, Address: ident.Address})
	return ident.Address, nil
}

// Disconnect tears the session down: the persisted address is cleared,
// the detected provider is forgotten, and any in-flight probe or connect
// result is invalidated so it cannot surface as a late transition.
// Synchronous and side-effect-free beyond that.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.addresses.Clear(); err != nil {
		return vcerr.Wrap(err, "clearing persisted address")
	}
	c.generation++
	c.handle = nil
	c.connecting = false
	c.transitionLocked(State{Phase: PhaseIdle})
	return nil
}

// transitionLocked applies a state transition and notifies watchers.
// Callers hold c.mu. Illegal transitions indicate a controller bug and
// are logged and dropped rather than corrupting the machine.
func (c *Controller) transitionLocked(next State) {
	if err := validateTransition(c.state.Phase, next.Phase); err != nil {
		c.log.Error("refusing illegal transition",
			zap.String("from", c.state.Phase.String()),
			zap.String("to", next.Phase.String()))
		return
	}
	if c.state.Phase == next.Phase && c.state.Address == next.Address && c.state.ErrKind == next.ErrKind {
		return
	}
	c.log.Debug("connection transition",
		zap.String("from", c.state.Phase.String()),
		zap.String("to", next.Phase.String()))
	c.state = next
	for _, ch := range c.watchers {
		select {
		case ch <- next:
		default:
			// Slow watcher; it will catch up from State().
		}
	}
}
