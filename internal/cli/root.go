// Package cli implements the veconnect command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/the-recircle-app/veconnect/internal/config"
	"github.com/the-recircle-app/veconnect/internal/connect"
	"github.com/the-recircle-app/veconnect/internal/identity"
	"github.com/the-recircle-app/veconnect/internal/logging"
	"github.com/the-recircle-app/veconnect/internal/output"
	"github.com/the-recircle-app/veconnect/internal/provider"
	"github.com/the-recircle-app/veconnect/internal/store"
	"github.com/the-recircle-app/veconnect/internal/transfer"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *zap.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "veconnect",
	Short: "Connect a VeChain wallet and send B3TR rewards",
	Long: `Veconnect discovers an injected VeChain wallet provider, authenticates
the user through a signed identity certificate, and submits B3TR token
transfers through the connected wallet.

Example:
  veconnect connect
  veconnect status
  veconnect send --to 0x... --amount 2.5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return vcerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.LoadOrDefaults(config.Path(home))
	if err != nil {
		return err
	}
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	logger, err = logging.New(cfg.Logging)
	if err != nil {
		logger = zap.NewNop()
	}

	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// newEnvironment returns the host environment providers are detected in.
// Production builds see the real (empty) host environment; the devmode
// build tag substitutes a simulated provider.
func newEnvironment() provider.Environment {
	if env := provider.DevEnvironment(); env != nil {
		return env
	}
	return provider.NewStaticEnvironment("", nil)
}

// newConnectController wires the connection controller from config.
func newConnectController() *connect.Controller {
	registry := provider.NewRegistry(newEnvironment(), provider.WithLogger(logger))
	session := identity.NewSession(cfg.App.Name, identity.WithLogger(logger))
	addresses := store.NewFileStore(cfg.AddressStorePath())
	return connect.New(registry, session, addresses,
		connect.WithProbeOptions(provider.ProbeOptions{
			MaxAttempts:    cfg.Probe.MaxAttempts,
			Interval:       cfg.Probe.Interval(),
			OverallTimeout: cfg.Probe.OverallTimeout(),
		}),
		connect.WithLogger(logger),
	)
}

// newTransferController wires the transfer controller for the active
// network.
func newTransferController(conn *connect.Controller) (*transfer.Controller, config.NetworkConfig, error) {
	net, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, config.NetworkConfig{}, err
	}
	return transfer.New(conn, net.TokenContract, net.Decimals,
		transfer.WithLogger(logger)), net, nil
}

// out writes formatted output to the writer, ignoring write errors.
func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line to the writer, ignoring write errors.
func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "veconnect data directory (default: ~/.veconnect)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
