package errors

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeProviderError   = "PROVIDER_ERROR"
	CodeAPIKeyMissing   = "API_KEY_MISSING"
	CodeSearchError     = "SEARCH_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeMemoryError     = "MEMORY_ERROR"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodePersonaNotFound = "PERSONA_NOT_FOUND"
)

// BotError is a structured error with a code and actionable suggestion.
type BotError struct {
	Code       string // machine-readable code (e.g. CONFIG_INVALID)
	Message    string // human-readable description
	Suggestion string // actionable fix
	Err        error  // wrapped underlying error
}

// Error implements the error interface.
func (e *BotError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *BotError) Unwrap() error {
	return e.Err
}

// New creates a BotError with the given code and message.
func New(code, message string) *BotError {
	return &BotError{Code: code, Message: message}
}

// Wrap creates a BotError wrapping an existing error.
func Wrap(code, message string, err error) *BotError {
	return &BotError{Code: code, Message: message, Err: err}
}

// WithSuggestion sets the suggestion and returns the same error.
func (e *BotError) WithSuggestion(suggestion string) *BotError {
	e.Suggestion = suggestion
	return e
}

// Is matches any BotError carrying the same code.
func (e *BotError) Is(target error) bool {
	var be *BotError
	if errors.As(target, &be) {
		return e.Code == be.Code
	}
	return false
}

// AsCode extracts the BotError code from an error, or "" if not a BotError.
func AsCode(err error) string {
	var be *BotError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Suggestion extracts the suggestion from an error, or "" if not a BotError.
func Suggestion(err error) string {
	var be *BotError
	if errors.As(err, &be) {
		return be.Suggestion
	}
	return ""
}

// Describe renders err for an end user, appending the suggestion when present.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if s := Suggestion(err); s != "" {
		return err.Error() + " (" + s + ")"
	}
	return err.Error()
}
