package cli

import (
	"github.com/spf13/cobra"

	"github.com/the-recircle-app/veconnect/internal/output"
)

// connectCmd connects a wallet.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a VeChain wallet",
	Long: `Probe the host environment for an injected wallet provider and
authenticate through a signed identity certificate.

The wallet asks for approval before signing; the verified address is
cached locally so the next command starts from the same identity.

Example:
  veconnect connect
  veconnect connect -o json`,
	RunE: runConnect,
}

// disconnectCmd tears the session down.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the wallet",
	Long: `Clear the cached wallet address and forget the detected provider.

Disconnecting never touches the wallet itself; it only removes the
local session state.`,
	RunE: runDisconnect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	controller := newConnectController()

	address, err := controller.Connect(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{
			"status":  "connected",
			"address": address,
		})
	}

	out(w, "Connected: %s\n", address)
	if net, err := cfg.ActiveNetwork(); err == nil && net.Explorer != "" {
		out(w, "Explorer:  %s/accounts/%s\n", net.Explorer, address)
	}
	return nil
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	controller := newConnectController()

	if err := controller.Disconnect(); err != nil {
		return err
	}

	return output.FormatSuccess(cmd.OutOrStdout(), "Disconnected", formatter.Format())
}
