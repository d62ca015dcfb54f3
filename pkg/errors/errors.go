// Package errors provides structured error handling for veconnect.
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

// Exit codes for the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
)

// VeconnectError is the structured error type for veconnect.
type VeconnectError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *VeconnectError) Error() string {
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

func (e *VeconnectError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for VeconnectError.
func (e *VeconnectError) Is(target error) bool {
	var t *VeconnectError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &VeconnectError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &VeconnectError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Provider-discovery errors.
	ErrProviderNotFound = &VeconnectError{
		Code:     "PROVIDER_NOT_FOUND",
		Message:  "no wallet provider detected",
		ExitCode: ExitNotFound,
	}

	ErrProviderGone = &VeconnectError{
		Code:     "PROVIDER_GONE",
		Message:  "wallet provider is no longer available",
		ExitCode: ExitNotFound,
	}

	// Identity/connection errors.
	ErrMalformedResponse = &VeconnectError{
		Code:     "MALFORMED_RESPONSE",
		Message:  "provider response is missing required fields",
		ExitCode: ExitAuth,
	}

	ErrCertificateRejected = &VeconnectError{
		Code:     "CERTIFICATE_REJECTED",
		Message:  "identity certificate was rejected",
		ExitCode: ExitAuth,
	}

	ErrNotConnected = &VeconnectError{
		Code:     "NOT_CONNECTED",
		Message:  "no wallet connected",
		ExitCode: ExitAuth,
	}

	// State-machine errors.
	ErrBusy = &VeconnectError{
		Code:     "OPERATION_IN_FLIGHT",
		Message:  "another operation is already in flight",
		ExitCode: ExitGeneral,
	}

	ErrInvalidTransition = &VeconnectError{
		Code:     "INVALID_TRANSITION",
		Message:  "illegal state transition",
		ExitCode: ExitGeneral,
	}

	// Transfer errors.
	ErrInvalidAmount = &VeconnectError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrAmountRequired = &VeconnectError{
		Code:     "AMOUNT_REQUIRED",
		Message:  "amount is required",
		ExitCode: ExitInput,
	}

	ErrInvalidRecipient = &VeconnectError{
		Code:     "INVALID_RECIPIENT",
		Message:  "invalid recipient",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &VeconnectError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrMissingTxID = &VeconnectError{
		Code:     "MISSING_TX_ID",
		Message:  "provider returned no transaction id",
		ExitCode: ExitGeneral,
	}

	ErrInsufficientFunds = &VeconnectError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transfer",
		ExitCode: ExitPermission,
	}

	// Config-specific errors.
	ErrConfigNotFound = &VeconnectError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &VeconnectError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &VeconnectError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}

	ErrUnknownNetwork = &VeconnectError{
		Code:     "UNKNOWN_NETWORK",
		Message:  "unknown network",
		ExitCode: ExitInput,
	}

	// Storage errors.
	ErrStoreCorrupted = &VeconnectError{
		Code:     "STORE_CORRUPTED",
		Message:  "stored connection state is corrupted",
		ExitCode: ExitGeneral,
	}
)

// New creates a new VeconnectError with the given code and message.
func New(code, message string) *VeconnectError {
	return &VeconnectError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ve *VeconnectError
	if errors.As(err, &ve) {
		return &VeconnectError{
			Code:       ve.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ve.Message),
			Details:    ve.Details,
			Suggestion: ve.Suggestion,
			Cause:      err,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VeconnectError{
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

	var ve *VeconnectError
	if errors.As(err, &ve) {
		return &VeconnectError{
			Code:       ve.Code,
			Message:    ve.Message,
			Details:    details,
			Suggestion: ve.Suggestion,
			Cause:      ve.Cause,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VeconnectError{
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

	var ve *VeconnectError
	if errors.As(err, &ve) {
		return &VeconnectError{
			Code:       ve.Code,
			Message:    ve.Message,
			Details:    ve.Details,
			Suggestion: suggestion,
			Cause:      ve.Cause,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VeconnectError{
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

	var ve *VeconnectError
	if errors.As(err, &ve) {
		return ve.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ve *VeconnectError
	if errors.As(err, &ve) {
		return ve.Code
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
