// Package identity authenticates a user through a detected wallet
// provider by requesting a signed identity certificate.
//
// A certificate is a human-readable consent message the user approves in
// their wallet UI; the signed response carries the account address without
// moving funds. This package surfaces provider failures raw — mapping them
// to the user-facing error taxonomy is the caller's concern, so the
// taxonomy lives in exactly one place.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/the-recircle-app/veconnect/internal/codec"
	"github.com/the-recircle-app/veconnect/internal/provider"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// certificatePurpose tags every authentication request.
const certificatePurpose = "identification"

// Identity is a verified account identity.
type Identity struct {
	Address string // Checksummed account address
	Raw     []byte // Provider's full certificate response, for diagnostics
}

// Session builds certificate requests and verifies provider responses.
type Session struct {
	appName string
	log     *zap.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	nonce func() string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithNonceSource replaces the nonce source.
func WithNonceSource(nonce func() string) SessionOption {
	return func(s *Session) { s.nonce = nonce }
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession creates a session requesting certificates on behalf of appName.
func NewSession(appName string, opts ...SessionOption) *Session {
	s := &Session{
		appName: appName,
		log:     zap.NewNop(),
		now:     time.Now,
		nonce:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request builds the certificate request for one authentication attempt.
// The content embeds a timestamp and a nonce so that no two attempts
// produce the same payload; a replayed certificate is therefore
// distinguishable from a fresh one.
func (s *Session) Request(purpose string) provider.CertificateRequest {
	content := fmt.Sprintf("%s requests wallet access: %s (issued %s, nonce %s)",
		s.appName, purpose, s.now().UTC().Format(time.RFC3339), s.nonce())
	return provider.CertificateRequest{
		Purpose: certificatePurpose,
		Payload: provider.CertificatePayload{
			Type:    "text",
			Content: content,
		},
	}
}

// Authenticate asks the provider to sign an identity certificate and
// extracts the verified address. The call may suspend indefinitely while
// the user decides in an external wallet UI; cancel ctx to abandon it.
//
// Provider errors propagate untouched. A response without an address is
// the one failure diagnosed here, as ErrMalformedResponse. No retries: a
// rejected or timed-out signature needs a fresh explicit user action.
func (s *Session) Authenticate(ctx context.Context, handle *provider.Handle, purpose string) (*Identity, error) {
	req := s.Request(purpose)
	s.log.Debug("requesting identity certificate", zap.String("purpose", purpose))

	resp, err := handle.SignCertificate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Address == "" {
		return nil, vcerr.WithDetails(vcerr.ErrMalformedResponse, map[string]string{
			"field": "address",
		})
	}

	address, err := codec.NormalizeAddress(resp.Address)
	if err != nil {
		return nil, vcerr.Wrap(vcerr.ErrMalformedResponse, "certificate signer address")
	}

	s.log.Debug("identity verified", zap.String("address", address))
	return &Identity{Address: address, Raw: resp.Raw}, nil
}
