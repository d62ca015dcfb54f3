package cli

import (
	"github.com/spf13/cobra"

	"github.com/the-recircle-app/veconnect/internal/connect"
	"github.com/the-recircle-app/veconnect/internal/metrics"
)

// statusMetrics toggles the metrics section of the status output.
var statusMetrics bool

// statusCmd shows the connection state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection status",
	Long: `Display the current connection state and the active network.

An address restored from the local cache is shown as unverified until
the next connect re-authenticates it.

Example:
  veconnect status
  veconnect status --metrics`,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusMetrics, "metrics", false, "include session metrics")
}

// statusJSON is the JSON shape of the status output.
type statusJSON struct {
	Phase    string            `json:"phase"`
	Address  string            `json:"address,omitempty"`
	Network  string            `json:"network"`
	Token    string            `json:"token,omitempty"`
	Contract string            `json:"contract,omitempty"`
	Metrics  *metrics.Snapshot `json:"metrics,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	controller := newConnectController()
	state := controller.State()

	status := statusJSON{
		Phase:   state.Phase.String(),
		Address: state.Address,
		Network: cfg.Network,
	}
	if net, err := cfg.ActiveNetwork(); err == nil {
		status.Token = net.TokenSymbol
		status.Contract = net.TokenContract
	}
	if statusMetrics {
		snap := metrics.Global.Snapshot()
		status.Metrics = &snap
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, status)
	}

	switch state.Phase {
	case connect.PhaseConnectedUnverified:
		out(w, "Status:  connected (unverified, from cache)\n")
	default:
		out(w, "Status:  %s\n", state.Phase)
	}
	if state.Address != "" {
		out(w, "Address: %s\n", state.Address)
	}
	out(w, "Network: %s\n", cfg.Network)
	if status.Token != "" {
		out(w, "Token:   %s (%s)\n", status.Token, status.Contract)
	}

	if statusMetrics {
		snap := metrics.Global.Snapshot()
		outln(w)
		outln(w, "Session metrics:")
		out(w, "  probes:    %d (%d misses)\n", snap.ProbesTotal, snap.ProbeMisses)
		out(w, "  auth:      %d ok, %d failed\n", snap.AuthSuccesses, snap.AuthFailures)
		out(w, "  transfers: %d submitted, %d succeeded, %d failed\n",
			snap.TransfersSubmitted, snap.TransfersSucceeded, snap.TransfersFailed)
	}
	return nil
}
