package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mrz1836/stationkey/internal/stationcrypto"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// minPasswordLength applies to new wallet and export passwords.
const minPasswordLength = 8

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // swapped by tests to avoid a terminal
var (
	promptPasswordFn    = promptPassword
	promptNewPasswordFn = promptNewPassword
	promptSecretFn      = promptPassword
	promptConfirmFn     = promptConfirmation
)

// promptPassword reads a line from the terminal without echo.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // G115: Fd() fits in int on supported platforms
	outln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword(prompt string) ([]byte, error) {
	password, err := promptPassword(prompt)
	if err != nil {
		return nil, err
	}

	if len(password) < minPasswordLength {
		stationcrypto.ZeroBytes(password)
		return nil, stationerr.WithSuggestion(stationerr.ErrInvalidInput,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		stationcrypto.ZeroBytes(password)
		return nil, err
	}
	defer stationcrypto.ZeroBytes(confirm)

	if string(password) != string(confirm) {
		stationcrypto.ZeroBytes(password)
		return nil, stationerr.WithSuggestion(stationerr.ErrInvalidInput, "passwords do not match")
	}

	return password, nil
}

// promptConfirmation asks a yes/no question on stderr; anything but y/yes is no.
func promptConfirmation(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}
