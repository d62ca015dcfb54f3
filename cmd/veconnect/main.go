// Command veconnect connects a VeChain wallet and sends B3TR rewards.
package main

import (
	"os"

	"github.com/the-recircle-app/veconnect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
