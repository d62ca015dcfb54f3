package cli

import (
	"github.com/spf13/cobra"

	"github.com/the-recircle-app/veconnect/internal/connect"
	"github.com/the-recircle-app/veconnect/internal/transfer"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

var (
	sendTo      string
	sendAmount  string
	sendComment string
	sendYes     bool
)

// sendCmd submits a token transfer through the connected wallet.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send B3TR tokens",
	Long: `Submit a B3TR token transfer through the connected wallet.

The amount is in whole tokens ("2.5" sends 2.5 B3TR). The wallet asks
for approval before the transaction is sent. A successful send means
the transaction was accepted by the wallet, not that it has settled
on-chain; check the explorer link for confirmation.

Example:
  veconnect send --to 0x1111111111111111111111111111111111111111 --amount 2.5
  veconnect send --to 0x... --amount 10 --comment "reward redemption" --yes`,
	RunE: runSend,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (required)")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", "amount in whole tokens (required)")
	sendCmd.Flags().StringVar(&sendComment, "comment", "", "comment shown in the wallet approval dialog")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
}

func runSend(cmd *cobra.Command, _ []string) error {
	conn := newConnectController()
	controller, net, err := newTransferController(conn)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// A cached address is enough to build the request, but the send
	// itself needs a live provider; Connect reuses the session when
	// one is already verified.
	sender := conn.State().Address
	if sender == "" || conn.State().Phase != connect.PhaseConnected {
		sender, err = conn.Connect(ctx)
		if err != nil {
			return err
		}
	}

	if !sendYes {
		if !stdinIsTerminal() {
			return vcerr.WithSuggestion(vcerr.ErrInvalidInput,
				"stdin is not a terminal; pass --yes to confirm non-interactively")
		}
		question := "Send " + sendAmount + " " + net.TokenSymbol + " to " + sendTo + "?"
		confirmed, err := promptConfirmation(cmd.InOrStdin(), question)
		if err != nil {
			return err
		}
		if !confirmed {
			return vcerr.New("CANCELLED", "send cancelled")
		}
	}

	result, err := controller.Submit(ctx, transfer.Request{
		Recipient: sendTo,
		Amount:    sendAmount,
		Sender:    sender,
		Comment:   sendComment,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{
			"status": "submitted",
			"txid":   result.TxID,
			"token":  net.TokenSymbol,
			"amount": sendAmount,
			"to":     sendTo,
		})
	}

	out(w, "Submitted: %s %s to %s\n", sendAmount, net.TokenSymbol, sendTo)
	out(w, "TxID:      %s\n", result.TxID)
	if net.Explorer != "" {
		out(w, "Explorer:  %s/transactions/%s\n", net.Explorer, result.TxID)
	}
	return nil
}
