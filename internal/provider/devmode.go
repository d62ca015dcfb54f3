//go:build devmode

package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DevEnvironment returns a simulated host environment carrying an
// auto-approving signer under the standard object name. It exists so the
// CLI can be exercised end to end without a real wallet and is compiled
// only under the devmode build tag; production builds get the stub in
// devmode_stub.go and can never reach a synthesized provider.
func DevEnvironment() Environment {
	return NewStaticEnvironment("veconnect-dev", map[string]any{
		ObjectStandard: &devSigner{address: randomHex(20)},
	})
}

// devSigner approves everything immediately.
type devSigner struct {
	address string
}

func (s *devSigner) SignCertificate(_ context.Context, _ CertificateRequest) (*CertificateResponse, error) {
	return &CertificateResponse{Address: s.address}, nil
}

func (s *devSigner) SubmitTransaction(_ context.Context, _ TransactionRequest) (*TransactionResponse, error) {
	return &TransactionResponse{TxID: randomHex(32)}, nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("reading randomness: %v", err))
	}
	return "0x" + hex.EncodeToString(buf)
}
