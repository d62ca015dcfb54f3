package provider

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// ProbeOptions bounds a discovery probe. Both limits are enforced
// independently; whichever threshold is crossed first ends the probe.
type ProbeOptions struct {
	MaxAttempts    int           // Detection passes, including the first
	Interval       time.Duration // Spacing between passes
	OverallTimeout time.Duration // Hard ceiling regardless of attempts left
}

// DefaultProbeOptions returns the standard probe budget. Wallet injection
// can lag page load by a few hundred milliseconds, so a single pass is not
// enough; ten passes half a second apart cover the worst observed lag.
func DefaultProbeOptions() ProbeOptions {
	return ProbeOptions{
		MaxAttempts:    10,
		Interval:       500 * time.Millisecond,
		OverallTimeout: 6 * time.Second,
	}
}

// Registry evaluates detection strategies against an injected host
// environment. It never installs or mutates provider objects.
type Registry struct {
	env        Environment
	strategies []Strategy
	log        *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrategies replaces the default strategy list.
func WithStrategies(strategies []Strategy) Option {
	return func(r *Registry) { r.strategies = strategies }
}

// WithLogger sets the registry logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// NewRegistry creates a registry probing the given environment.
func NewRegistry(env Environment, opts ...Option) *Registry {
	r := &Registry{
		env:        env,
		strategies: DefaultStrategies(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Detect evaluates the strategies once, in priority order.
func (r *Registry) Detect() (*Handle, bool) {
	for _, strategy := range r.strategies {
		if signer, ok := strategy.Detect(r.env); ok {
			r.log.Debug("provider detected", zap.String("kind", strategy.Kind.String()))
			return NewHandle(strategy.Kind, signer), true
		}
	}
	return nil, false
}

// Probe repeatedly evaluates the strategies until one is satisfied or the
// budget runs out. Returns ErrProviderNotFound when the budget is
// exhausted and the caller's context error when cancelled mid-probe; a
// cancelled probe releases its timer and performs no further passes.
func (r *Registry) Probe(ctx context.Context, opts ProbeOptions) (*Handle, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Millisecond
	}

	probeCtx := ctx
	if opts.OverallTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, opts.OverallTimeout)
		defer cancel()
	}

	// Token bucket with burst 1: the first pass runs immediately, each
	// later pass waits one interval. Wait is context-cancellable, which
	// is what makes the whole loop tear down cleanly.
	limiter := rate.NewLimiter(rate.Every(opts.Interval), 1)

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if err := limiter.Wait(probeCtx); err != nil {
			return nil, r.probeStopped(ctx, attempt)
		}
		if handle, ok := r.Detect(); ok {
			return handle, nil
		}
		r.log.Debug("probe pass found nothing", zap.Int("attempt", attempt+1))
	}

	return nil, r.notFound(opts.MaxAttempts)
}

// probeStopped distinguishes caller cancellation from our own overall
// timeout: the former propagates, the latter reports not-found.
func (r *Registry) probeStopped(callerCtx context.Context, attempts int) error {
	if err := callerCtx.Err(); err != nil {
		return err
	}
	return r.notFound(attempts)
}

func (r *Registry) notFound(attempts int) error {
	err := vcerr.WithDetails(vcerr.ErrProviderNotFound, map[string]string{
		"attempts": strconv.Itoa(attempts),
	})
	return vcerr.WithSuggestion(err,
		"open this page in the VeWorld app or install the VeWorld browser extension")
}
