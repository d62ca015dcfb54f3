package codec

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// B3TRDecimals is the fractional precision of the B3TR token.
const B3TRDecimals = 18

// ParseAmount converts a user-facing decimal amount string into base units
// with the given fractional precision. "1.5" with 18 decimals yields
// 1500000000000000000.
//
// Inputs with more fractional digits than the precision allows are an
// error, never silently truncated: a sub-base-unit amount the chain cannot
// represent is a caller bug, not dust to round away. Negative, empty, and
// malformed inputs are rejected.
func ParseAmount(amount string, decimals int) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, vcerr.ErrAmountRequired
	}
	if trimmed != amount {
		// Leading/trailing whitespace indicates the caller did not
		// validate its input; reject rather than guess.
		return nil, invalidAmount(amount, "whitespace in amount")
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, invalidAmount(amount, "not a decimal number")
	}
	if d.Sign() < 0 {
		return nil, invalidAmount(amount, "amount is negative")
	}
	if d.Exponent() < -int32(decimals) {
		return nil, invalidAmount(amount, "too many fractional digits")
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, invalidAmount(amount, "too many fractional digits")
	}
	return scaled.BigInt(), nil
}

// FormatAmount converts base units back to a human-readable decimal string
// with trailing zeros removed. 1500000000000000000 with 18 decimals yields
// "1.5".
func FormatAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

func invalidAmount(amount, reason string) error {
	return vcerr.WithDetails(vcerr.ErrInvalidAmount, map[string]string{
		"amount": amount,
		"reason": reason,
	})
}
