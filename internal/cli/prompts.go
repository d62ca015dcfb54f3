package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptConfirmation asks a yes/no question on stderr and reads the answer
// from the reader. Only "y" and "yes" confirm, anything else declines.
func promptConfirmation(r io.Reader, question string) (bool, error) {
	out(os.Stderr, "%s [y/N]: ", question)

	reader := bufio.NewReader(r)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// stdinIsTerminal reports whether stdin is an interactive terminal.
// Non-interactive callers must pass --yes instead of being prompted.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
