// Package provider discovers wallet providers injected into the host
// environment and wraps them behind a uniform handle.
//
// There is no standardized capability negotiation between the competing
// wallet-injection APIs: the mobile in-app browser, the desktop extension,
// and older builds each expose a differently-shaped object under a
// different name. Detection is duck-typed: an injected object is usable if
// it satisfies the Signer interface (or produces one via SignerFactory).
package provider

import (
	"context"
	"math/big"

	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// Kind identifies which injection API a handle was detected through.
type Kind string

// Provider kinds in detection-priority order.
const (
	KindMobileApp        Kind = "mobile_inapp"
	KindStandard         Kind = "standard_connex"
	KindDesktopExtension Kind = "desktop_extension"
	KindLegacy           Kind = "legacy_global"
)

// String returns the kind identifier string.
func (k Kind) String() string {
	return string(k)
}

// CertificatePayload is the human-readable body of a certificate request.
type CertificatePayload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// CertificateRequest asks the provider to sign an identity certificate.
type CertificateRequest struct {
	Purpose string             `json:"purpose"`
	Payload CertificatePayload `json:"payload"`
}

// CertificateResponse is the provider's answer to a certificate request.
// Address is the account that signed; Raw carries the provider's full
// response for diagnostics and is never interpreted here.
type CertificateResponse struct {
	Address string `json:"address"`
	Raw     []byte `json:"raw,omitempty"`
}

// Clause is one destination/value/data triple within a transaction.
type Clause struct {
	To    string   `json:"to"`
	Value *big.Int `json:"value"`
	Data  []byte   `json:"data"`
}

// TransactionRequest asks the provider to sign and broadcast a transaction.
type TransactionRequest struct {
	Clauses []Clause `json:"clauses"`
	Comment string   `json:"comment,omitempty"`
}

// TransactionResponse acknowledges a broadcast transaction.
type TransactionResponse struct {
	TxID string `json:"txid"`
}

// Signer is the call surface every usable injected wallet object must
// expose. Both calls may suspend indefinitely waiting on human approval in
// an external wallet UI and must honor context cancellation.
type Signer interface {
	SignCertificate(ctx context.Context, req CertificateRequest) (*CertificateResponse, error)
	SubmitTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error)
}

// SignerFactory is the shape of the desktop extension's injected object,
// which exposes a constructor instead of a ready signer.
type SignerFactory interface {
	NewSigner() Signer
}

// Environment is the host context that may carry injected wallet objects.
// It is an explicit dependency so tests and the dev-mode harness can
// substitute fakes without process-wide state.
type Environment interface {
	// UserAgent returns the host's user-agent string, or "" if none.
	UserAgent() string

	// Lookup returns the injected object registered under name.
	Lookup(name string) (any, bool)

	// Names returns the names of all injected objects, for last-resort
	// generic detection.
	Names() []string
}

// Handle is an opaque reference to a detected provider. It is held for the
// lifetime of the session and never persisted; if the host removes the
// underlying object, the loss only surfaces as a failure on next use.
type Handle struct {
	kind   Kind
	signer Signer
}

// NewHandle wraps a signer in a handle. Exposed for test doubles; normal
// construction happens inside Registry.Probe.
func NewHandle(kind Kind, signer Signer) *Handle {
	return &Handle{kind: kind, signer: signer}
}

// Kind returns the detection strategy this handle was created through.
func (h *Handle) Kind() Kind {
	return h.kind
}

// SignCertificate forwards a certificate request to the provider.
func (h *Handle) SignCertificate(ctx context.Context, req CertificateRequest) (*CertificateResponse, error) {
	if h == nil || h.signer == nil {
		return nil, vcerr.ErrProviderGone
	}
	return h.signer.SignCertificate(ctx, req)
}

// SubmitTransaction forwards a transaction request to the provider.
func (h *Handle) SubmitTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	if h == nil || h.signer == nil {
		return nil, vcerr.ErrProviderGone
	}
	return h.signer.SubmitTransaction(ctx, req)
}
