// Package codec builds call payloads for the B3TR token contract.
//
// The only call shape this application ever submits is a fungible-token
// transfer(address,uint256). Encoding is pure and deterministic; nothing
// here performs I/O or talks to a provider.
package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// transferSignature is the literal function signature the selector is
// derived from. keccak256("transfer(address,uint256)")[:4] = 0xa9059cbb.
const transferSignature = "transfer(address,uint256)"

//nolint:gochecknoglobals // derived once at startup, read-only afterwards
var transferSelector = computeSelector(transferSignature)

// computeSelector derives the 4-byte function selector for a signature.
func computeSelector(signature string) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))
	return hasher.Sum(nil)[:4]
}

// TransferSelector returns a copy of the transfer(address,uint256) selector.
func TransferSelector() []byte {
	out := make([]byte, 4)
	copy(out, transferSelector)
	return out
}

// TransferData builds the call data for a token transfer: the 4-byte
// selector followed by the recipient and amount, each left-padded to
// 32 bytes. The amount is in base units (already scaled by the token's
// decimals).
func TransferData(recipient string, amount *big.Int) ([]byte, error) {
	if !common.IsHexAddress(recipient) {
		return nil, vcerr.WithDetails(vcerr.ErrInvalidRecipient, map[string]string{
			"recipient": recipient,
		})
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, vcerr.ErrInvalidAmount
	}
	amountBytes := amount.Bytes()
	if len(amountBytes) > 32 {
		return nil, vcerr.WithDetails(vcerr.ErrInvalidAmount, map[string]string{
			"reason": "amount exceeds uint256 range",
		})
	}

	data := make([]byte, 68) // 4 + 32 + 32
	copy(data[:4], transferSelector)

	// Pad address to 32 bytes (left-pad with zeros)
	toAddr := common.HexToAddress(recipient)
	copy(data[16:36], toAddr.Bytes())

	// Pad amount to 32 bytes (left-pad with zeros)
	copy(data[68-len(amountBytes):68], amountBytes)

	return data, nil
}

// NormalizeAddress validates an address and returns its checksummed form.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", vcerr.WithDetails(vcerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}
	return common.HexToAddress(address).Hex(), nil
}
