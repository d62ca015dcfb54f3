package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

func TestParseAmountValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"whole number", "1", 18, "1000000000000000000"},
		{"fraction", "1.5", 18, "1500000000000000000"},
		{"reward amount", "2.5", 18, "2500000000000000000"},
		{"smallest unit", "0.000000000000000001", 18, "1"},
		{"exactly 18 fractional digits", "0.123456789012345678", 18, "123456789012345678"},
		{"zero", "0", 18, "0"},
		{"zero with fraction", "0.0", 18, "0"},
		{"fewer decimals", "1.1", 8, "110000000"},
		{"large amount", "100000", 18, "100000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		amount   string
		decimals int
		sentinel error
	}{
		{"empty", "", 18, vcerr.ErrAmountRequired},
		{"spaces only", "   ", 18, vcerr.ErrAmountRequired},
		{"negative", "-1", 18, vcerr.ErrInvalidAmount},
		{"negative fraction", "-0.5", 18, vcerr.ErrInvalidAmount},
		{"letters", "abc", 18, vcerr.ErrInvalidAmount},
		{"double dot", "1.2.3", 18, vcerr.ErrInvalidAmount},
		{"leading space", " 1.5", 18, vcerr.ErrInvalidAmount},
		{"19 fractional digits", "1.0000000000000000001", 18, vcerr.ErrInvalidAmount},
		{"9 digits at 8 decimals", "0.123456789", 8, vcerr.ErrInvalidAmount},
		{"scientific below precision", "1e-19", 18, vcerr.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAmount(tt.amount, tt.decimals)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

// Extra fractional digits must fail, never round: "1.0000000000000000001"
// is not representable in 18 decimals and silently dropping the final
// digit would transfer a different amount than the user approved.
func TestParseAmountNeverTruncates(t *testing.T) {
	t.Parallel()
	_, err := ParseAmount("1.0000000000000000001", 18)
	require.Error(t, err)

	// The truncation-adjacent value parses fine.
	got, err := ParseAmount("1.000000000000000001", 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000001", got.String())
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		amount   *big.Int
		decimals int
		want     string
	}{
		{"1.5 tokens", big.NewInt(0).SetUint64(1500000000000000000), 18, "1.5"},
		{"one base unit", big.NewInt(1), 18, "0.000000000000000001"},
		{"whole", big.NewInt(0).SetUint64(2000000000000000000), 18, "2"},
		{"zero", big.NewInt(0), 18, "0"},
		{"nil", nil, 18, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.decimals))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"1.5", "0.000000000000000001", "42", "2.5"} {
		parsed, err := ParseAmount(s, 18)
		require.NoError(t, err)
		assert.Equal(t, s, FormatAmount(parsed, 18))
	}
}
