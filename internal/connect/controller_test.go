package connect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-recircle-app/veconnect/internal/identity"
	"github.com/the-recircle-app/veconnect/internal/provider"
	"github.com/the-recircle-app/veconnect/internal/store"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

const testAddress = "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"

// stubSigner is a scriptable provider.Signer. When gate is set,
// SignCertificate blocks until the gate closes or the context is
// cancelled, simulating a wallet UI waiting on human approval.
type stubSigner struct {
	mu        sync.Mutex
	certCalls int
	resp      *provider.CertificateResponse
	err       error
	gate      chan struct{}
}

func (s *stubSigner) SignCertificate(ctx context.Context, _ provider.CertificateRequest) (*provider.CertificateResponse, error) {
	s.mu.Lock()
	s.certCalls++
	gate := s.gate
	resp, err := s.resp, s.err
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp, err
}

func (s *stubSigner) SubmitTransaction(_ context.Context, _ provider.TransactionRequest) (*provider.TransactionResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSigner) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.certCalls
}

// countingEnv counts Lookup calls on top of an inner environment. The
// delay holds each detection pass open so concurrent probes overlap.
type countingEnv struct {
	provider.Environment
	delay   time.Duration
	mu      sync.Mutex
	lookups int
}

func (e *countingEnv) Lookup(name string) (any, bool) {
	e.mu.Lock()
	e.lookups++
	e.mu.Unlock()
	time.Sleep(e.delay)
	return e.Environment.Lookup(name)
}

func (e *countingEnv) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookups
}

func fastProbeOptions() provider.ProbeOptions {
	return provider.ProbeOptions{
		MaxAttempts:    3,
		Interval:       5 * time.Millisecond,
		OverallTimeout: time.Second,
	}
}

func newTestController(t *testing.T, signer *stubSigner, addresses store.AddressStore) *Controller {
	t.Helper()

	objects := map[string]any{}
	if signer != nil {
		objects[provider.ObjectStandard] = signer
	}
	registry := provider.NewRegistry(provider.NewStaticEnvironment("", objects))
	session := identity.NewSession("veconnect-test")
	return New(registry, session, addresses, WithProbeOptions(fastProbeOptions()))
}

func TestConnectSuccess(t *testing.T) {
	t.Parallel()

	signer := &stubSigner{resp: &provider.CertificateResponse{Address: testAddress}}
	addresses := store.NewMemoryStore()
	c := newTestController(t, signer, addresses)

	states, cancel := c.Watch()
	defer cancel()

	address, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress).Hex(), address)

	state := c.State()
	assert.Equal(t, PhaseConnected, state.Phase)
	assert.Equal(t, address, state.Address)

	conn, ok, err := addresses.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, address, conn.Address)

	var phases []Phase
	for len(states) > 0 {
		phases = append(phases, (<-states).Phase)
	}
	assert.Equal(t, []Phase{PhaseProbing, PhaseReady, PhaseConnecting, PhaseConnected}, phases)
}

func TestConnectAuthFailureClassified(t *testing.T) {
	t.Parallel()

	authErr := errors.New("user rejected the request")
	signer := &stubSigner{err: authErr}
	c := newTestController(t, signer, store.NewMemoryStore())

	_, err := c.Connect(context.Background())
	require.ErrorIs(t, err, authErr)

	state := c.State()
	assert.Equal(t, PhaseErrored, state.Phase)
	assert.Equal(t, "user_rejection", state.ErrKind)
	require.ErrorIs(t, state.Err, authErr)
}

func TestConnectRetryAfterError(t *testing.T) {
	t.Parallel()

	signer := &stubSigner{err: errors.New("request denied")}
	c := newTestController(t, signer, store.NewMemoryStore())

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	require.Equal(t, PhaseErrored, c.State().Phase)

	signer.mu.Lock()
	signer.err = nil
	signer.resp = &provider.CertificateResponse{Address: testAddress}
	signer.mu.Unlock()

	address, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress).Hex(), address)
	assert.Equal(t, PhaseConnected, c.State().Phase)
}

func TestConnectBusyWhileConnecting(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	signer := &stubSigner{
		resp: &provider.CertificateResponse{Address: testAddress},
		gate: gate,
	}
	c := newTestController(t, signer, store.NewMemoryStore())

	done := make(chan error, 1)
	go func() {
		_, err := c.Connect(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseConnecting
	}, time.Second, time.Millisecond)

	_, err := c.Connect(context.Background())
	require.ErrorIs(t, err, vcerr.ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseConnected, c.State().Phase)
}

func TestDisconnectDuringConnectingDropsLateResult(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	signer := &stubSigner{
		resp: &provider.CertificateResponse{Address: testAddress},
		gate: gate,
	}
	addresses := store.NewMemoryStore()
	c := newTestController(t, signer, addresses)

	done := make(chan error, 1)
	go func() {
		_, err := c.Connect(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseConnecting
	}, time.Second, time.Millisecond)

	require.NoError(t, c.Disconnect())
	assert.Equal(t, PhaseIdle, c.State().Phase)

	states, cancel := c.Watch()
	defer cancel()

	// The wallet eventually approves, but the session it belonged to is
	// already gone. The approval must not surface as a Connected state.
	close(gate)
	require.ErrorIs(t, <-done, vcerr.ErrNotConnected)

	assert.Equal(t, PhaseIdle, c.State().Phase)
	assert.Empty(t, states, "no transition may follow the disconnect")

	_, ok, err := addresses.Load()
	require.NoError(t, err)
	assert.False(t, ok, "stale approval must not be persisted")
}

func TestProbeNoProviderUnavailable(t *testing.T) {
	t.Parallel()

	c := newTestController(t, nil, store.NewMemoryStore())

	_, err := c.Probe(context.Background())
	require.ErrorIs(t, err, vcerr.ErrProviderNotFound)
	assert.Equal(t, PhaseUnavailable, c.State().Phase)
}

func TestProbeSingleFlight(t *testing.T) {
	t.Parallel()

	signer := &stubSigner{resp: &provider.CertificateResponse{Address: testAddress}}
	env := &countingEnv{
		Environment: provider.NewStaticEnvironment("", map[string]any{
			provider.ObjectStandard: signer,
		}),
		delay: 50 * time.Millisecond,
	}
	registry := provider.NewRegistry(env)
	c := New(registry, identity.NewSession("veconnect-test"), store.NewMemoryStore(),
		WithProbeOptions(fastProbeOptions()))

	const callers = 8
	type outcome struct {
		handle *provider.Handle
		err    error
	}
	results := make(chan outcome, callers)
	for i := 0; i < callers; i++ {
		go func() {
			handle, err := c.Probe(context.Background())
			results <- outcome{handle: handle, err: err}
		}()
	}

	var first *provider.Handle
	for i := 0; i < callers; i++ {
		res := <-results
		require.NoError(t, res.err)
		if first == nil {
			first = res.handle
		}
		assert.Same(t, first, res.handle)
	}
	assert.LessOrEqual(t, env.count(), 2, "concurrent probes must share one detection pass")
	assert.Equal(t, PhaseReady, c.State().Phase)
}

func TestRestoredAddressReconciledToUnavailable(t *testing.T) {
	t.Parallel()

	addresses := store.NewMemoryStore()
	require.NoError(t, addresses.Save(store.Connection{Address: testAddress, SavedAt: time.Now()}))

	c := newTestController(t, nil, addresses)

	state := c.State()
	require.Equal(t, PhaseConnectedUnverified, state.Phase)
	assert.Equal(t, testAddress, state.Address)

	_, err := c.Probe(context.Background())
	require.ErrorIs(t, err, vcerr.ErrProviderNotFound)
	assert.Equal(t, PhaseUnavailable, c.State().Phase)
}

func TestRestoredAddressSurvivesSuccessfulProbe(t *testing.T) {
	t.Parallel()

	addresses := store.NewMemoryStore()
	require.NoError(t, addresses.Save(store.Connection{Address: testAddress, SavedAt: time.Now()}))

	signer := &stubSigner{resp: &provider.CertificateResponse{Address: testAddress}}
	c := newTestController(t, signer, addresses)

	handle, err := c.Probe(context.Background())
	require.NoError(t, err)
	require.NotNil(t, handle)

	// The cached identity stays presentable; re-verification is lazy.
	state := c.State()
	assert.Equal(t, PhaseConnectedUnverified, state.Phase)
	assert.Equal(t, testAddress, state.Address)
}

func TestDisconnectClearsStore(t *testing.T) {
	t.Parallel()

	signer := &stubSigner{resp: &provider.CertificateResponse{Address: testAddress}}
	addresses := store.NewMemoryStore()
	c := newTestController(t, signer, addresses)

	_, err := c.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Disconnect())
	assert.Equal(t, PhaseIdle, c.State().Phase)

	_, ok, err := addresses.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnectCancelledContext(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	defer close(gate)
	signer := &stubSigner{
		resp: &provider.CertificateResponse{Address: testAddress},
		gate: gate,
	}
	c := newTestController(t, signer, store.NewMemoryStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Connect(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseConnecting
	}, time.Second, time.Millisecond)

	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseErrored, c.State().Phase)
}

func TestWatchCancelClosesChannel(t *testing.T) {
	t.Parallel()

	c := newTestController(t, nil, store.NewMemoryStore())

	states, cancel := c.Watch()
	cancel()

	_, open := <-states
	assert.False(t, open)

	// Cancelling twice is safe.
	cancel()
}

func TestValidateTransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from Phase
		to   Phase
		ok   bool
	}{
		{"idle to probing", PhaseIdle, PhaseProbing, true},
		{"probing to ready", PhaseProbing, PhaseReady, true},
		{"probing to unavailable", PhaseProbing, PhaseUnavailable, true},
		{"ready to connecting", PhaseReady, PhaseConnecting, true},
		{"connecting to connected", PhaseConnecting, PhaseConnected, true},
		{"connecting to errored", PhaseConnecting, PhaseErrored, true},
		{"errored to connecting", PhaseErrored, PhaseConnecting, true},
		{"unverified to connecting", PhaseConnectedUnverified, PhaseConnecting, true},
		{"unverified to unavailable", PhaseConnectedUnverified, PhaseUnavailable, true},
		{"same phase no-op", PhaseConnected, PhaseConnected, true},
		{"idle straight to connected", PhaseIdle, PhaseConnected, false},
		{"unavailable to connecting", PhaseUnavailable, PhaseConnecting, false},
		{"connected to errored", PhaseConnected, PhaseErrored, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.ErrorIs(t, err, vcerr.ErrInvalidTransition)
			}
		})
	}
}
