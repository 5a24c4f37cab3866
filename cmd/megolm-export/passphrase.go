package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

// readPassphrase resolves the passphrase to use for an export/import run.
// If envVar names a set environment variable, its value is used directly
// (for scripted invocations); otherwise the user is prompted, with the
// terminal echo disabled when stdin is a TTY.
func readPassphrase(envVar string) (string, error) {
	if envVar != "" {
		if v, ok := os.LookupEnv(envVar); ok {
			return v, nil
		}
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read passphrase: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
