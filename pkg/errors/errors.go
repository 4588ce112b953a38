// Package errors provides structured error handling for stationkey.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or unsupported by the key backend
)

// detailRawLog is the detail key carrying a chain's raw log on broadcast failures.
const detailRawLog = "raw_log"

// StationError is the structured error type for stationkey.
type StationError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *StationError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *StationError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for StationError. Two errors match when their codes match.
func (e *StationError) Is(target error) bool {
	var t *StationError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &StationError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &StationError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &StationError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Session errors.
	ErrNoWalletConnected = &StationError{
		Code:       "NO_WALLET_CONNECTED",
		Message:    "no wallet connected",
		Suggestion: "connect a wallet with 'stationkey connect <name>'",
		ExitCode:   ExitInput,
	}

	ErrWalletLocked = &StationError{
		Code:       "WALLET_LOCKED",
		Message:    "wallet is locked",
		Suggestion: "unlock the wallet with 'stationkey wallet unlock <name>'",
		ExitCode:   ExitAuth,
	}

	// Key resolution errors.
	ErrIncorrectPassword = &StationError{
		Code:     "INCORRECT_PASSWORD",
		Message:  "incorrect password",
		ExitCode: ExitAuth,
	}

	// ErrNoKeyForCoinType is reported when a raw-key wallet holds no key for the
	// requested coin type. It shares code and message with ErrIncorrectPassword
	// so the two cases cannot be told apart by callers.
	ErrNoKeyForCoinType = &StationError{
		Code:     "INCORRECT_PASSWORD",
		Message:  "incorrect password",
		ExitCode: ExitAuth,
	}

	ErrKeyNotFound = &StationError{
		Code:     "KEY_NOT_FOUND",
		Message:  "key not found",
		ExitCode: ExitNotFound,
	}

	// Signing errors.
	ErrUnsupportedOperation = &StationError{
		Code:     "UNSUPPORTED_OPERATION",
		Message:  "operation not supported by this key",
		ExitCode: ExitPermission,
	}

	ErrSignatureUnavailable = &StationError{
		Code:     "SIGNATURE_UNAVAILABLE",
		Message:  "signature unavailable",
		ExitCode: ExitGeneral,
	}

	ErrHardwareUnavailable = &StationError{
		Code:       "HARDWARE_UNAVAILABLE",
		Message:    "hardware device unavailable",
		Suggestion: "connect and unlock the device, then open the Terra app",
		ExitCode:   ExitGeneral,
	}

	// Wallet storage errors.
	ErrWalletNotFound = &StationError{
		Code:     "WALLET_NOT_FOUND",
		Message:  "wallet not found",
		ExitCode: ExitNotFound,
	}

	ErrWalletExists = &StationError{
		Code:     "WALLET_EXISTS",
		Message:  "wallet already exists",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &StationError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	// Chain and network errors.
	ErrUnknownChain = &StationError{
		Code:     "UNKNOWN_CHAIN",
		Message:  "unknown chain",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &StationError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrAccountNotFound = &StationError{
		Code:     "ACCOUNT_NOT_FOUND",
		Message:  "account not found",
		ExitCode: ExitNotFound,
	}

	ErrNetworkError = &StationError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrBroadcast = &StationError{
		Code:     "BROADCAST_ERROR",
		Message:  "transaction rejected by network",
		ExitCode: ExitGeneral,
	}

	ErrInvalidTransaction = &StationError{
		Code:     "INVALID_TRANSACTION",
		Message:  "invalid transaction",
		ExitCode: ExitInput,
	}

	// Config errors.
	ErrConfigInvalid = &StationError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new StationError with the given code and message.
func New(code, message string) *StationError {
	return &StationError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// NewBroadcastError reports a transaction-level failure returned by the chain.
func NewBroadcastError(rawLog string) error {
	return WithDetails(ErrBroadcast, map[string]string{detailRawLog: rawLog})
}

// RawLog returns the raw log attached to a broadcast error, if any.
func RawLog(err error) string {
	var se *StationError
	if errors.As(err, &se) {
		return se.Details[detailRawLog]
	}
	return ""
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var se *StationError
	if errors.As(err, &se) {
		return &StationError{
			Code:       se.Code,
			Message:    fmt.Sprintf("%s: %s", msg, se.Message),
			Details:    se.Details,
			Suggestion: se.Suggestion,
			Cause:      err,
			ExitCode:   se.ExitCode,
		}
	}

	return &StationError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var se *StationError
	if errors.As(err, &se) {
		return &StationError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    details,
			Suggestion: se.Suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &StationError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var se *StationError
	if errors.As(err, &se) {
		return &StationError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    se.Details,
			Suggestion: suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &StationError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var se *StationError
	if errors.As(err, &se) {
		return se.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var se *StationError
	if errors.As(err, &se) {
		return se.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
