// Package prompt reads answers and hidden values from the terminal.
package prompt

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("stdin is not a terminal")

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReadSecret reads a value from the terminal without echoing
func ReadSecret(prompt string) ([]byte, error) {
	if !IsTerminal(os.Stdin) {
		return nil, ErrNotTerminal
	}
	fmt.Fprint(os.Stderr, prompt)

	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after the hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read value: %w", err)
	}
	return secret, nil
}

// ReadSecretConfirm reads a value twice and ensures both entries match
func ReadSecretConfirm(prompt string) ([]byte, error) {
	first, err := ReadSecret(prompt)
	if err != nil {
		return nil, err
	}

	second, err := ReadSecret("Confirm: ")
	if err != nil {
		clearBytes(first)
		return nil, err
	}
	defer clearBytes(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		clearBytes(first)
		return nil, fmt.Errorf("values do not match")
	}
	return first, nil
}

// clearBytes overwrites a secret in memory
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ReadLine reads one line from r without its line break
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes/no question; anything but "y" is a no
func Confirm(question string) (bool, error) {
	fmt.Printf("%s [y/N]: ", question)
	choice, err := readChoice()
	if err != nil {
		return false, err
	}
	return choice == "y", nil
}

// readChoice reads a single character choice from the terminal
func readChoice() (string, error) {
	fd := int(os.Stdin.Fd())

	// Try raw mode for single-key input
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Fallback to line input
		line, err := ReadLine(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.ToLower(strings.TrimSpace(line)), nil
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	buf := make([]byte, 1)
	if _, err := os.Stdin.Read(buf); err != nil {
		return "", err
	}

	choice := strings.ToLower(string(buf[0]))
	fmt.Printf("%s\r\n", choice) // Echo the choice
	return choice, nil
}
