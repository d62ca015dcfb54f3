package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-recircle-app/veconnect/internal/config"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

func TestConfigValue(t *testing.T) {
	testCfg := config.Defaults()
	testCfg.Home = "/test/home"
	testCfg.Network = "testnet"
	testCfg.Output.DefaultFormat = "json"
	testCfg.Output.Verbose = true
	testCfg.Logging.Level = "debug"
	testCfg.Probe.MaxAttempts = 7

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "home", key: "home", want: "/test/home"},
		{name: "network", key: "network", want: "testnet"},
		{name: "app name", key: "app.name", want: "ReCircle"},
		{name: "probe max attempts", key: "probe.max_attempts", want: "7"},
		{name: "output format", key: "output.default_format", want: "json"},
		{name: "output verbose", key: "output.verbose", want: "true"},
		{name: "logging level", key: "logging.level", want: "debug"},
		{name: "unknown key", key: "unknown", wantErr: true},
		{name: "unknown nested key", key: "probe.unknown", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := configValue(testCfg, tc.key)
			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, vcerr.ErrUnknownConfigKey)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, cfg *config.Config)
		wantErr error
	}{
		{
			name:  "network",
			key:   "network",
			value: "testnet",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "testnet", cfg.Network)
			},
		},
		{
			name:  "probe max attempts",
			key:   "probe.max_attempts",
			value: "20",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 20, cfg.Probe.MaxAttempts)
			},
		},
		{
			name:  "output verbose",
			key:   "output.verbose",
			value: "true",
			check: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.Output.Verbose)
			},
		},
		{
			name:    "non-numeric attempts",
			key:     "probe.max_attempts",
			value:   "lots",
			wantErr: vcerr.ErrInvalidInput,
		},
		{
			name:    "non-boolean verbose",
			key:     "output.verbose",
			value:   "maybe",
			wantErr: vcerr.ErrInvalidInput,
		},
		{
			name:    "unknown key",
			key:     "probe.retries",
			value:   "5",
			wantErr: vcerr.ErrUnknownConfigKey,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testCfg := config.Defaults()
			err := setConfigValue(testCfg, tc.key, tc.value)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, testCfg)
		})
	}
}

func TestSetConfigValueRoundTrip(t *testing.T) {
	testCfg := config.Defaults()

	for _, key := range config.Keys() {
		_, err := configValue(testCfg, key)
		require.NoError(t, err, "key %q listed but not readable", key)
	}
}

func TestUnknownKeyErrorSuggests(t *testing.T) {
	err := unknownKeyError("netwrk")
	require.ErrorIs(t, err, vcerr.ErrUnknownConfigKey)
	var ve *vcerr.VeconnectError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Suggestion, `"network"`)

	err = unknownKeyError("zzzzzzzz")
	require.ErrorIs(t, err, vcerr.ErrUnknownConfigKey)
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, ve.Suggestion)
}
