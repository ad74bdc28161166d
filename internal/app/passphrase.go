package app

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"riffbox/internal/encryption"
)

// PromptPassphrase returns a PassphraseFunc reading RIFFBOX_PASSPHRASE, or
// prompting on the terminal when it is unset.
func PromptPassphrase(prompt string) encryption.PassphraseFunc {
	return func() (string, error) {
		if p := os.Getenv(EnvPassphrase); p != "" {
			return p, nil
		}

		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", errors.New("stdin is not a terminal: set " + EnvPassphrase)
		}

		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if len(b) == 0 {
			return "", errors.New("empty passphrase")
		}
		return string(b), nil
	}
}
