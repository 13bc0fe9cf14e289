package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category returns the stable category label for an error
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "ErrCanceled"
	case errors.Is(err, ErrRequestFailed):
		return "ErrRequestFailed"
	case errors.Is(err, ErrAPI):
		return "ErrAPI"
	case errors.Is(err, ErrInvalidEnvelope):
		return "ErrInvalidEnvelope"
	case errors.Is(err, ErrUnrecognizedResponse):
		return "ErrUnrecognizedResponse"
	case errors.Is(err, ErrInvalidModelOutput):
		return "ErrInvalidModelOutput"
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// IsUpstream reports whether the error originated at or beyond the HTTP boundary
func IsUpstream(err error) bool {
	return errors.Is(err, ErrRequestFailed) ||
		errors.Is(err, ErrAPI) ||
		errors.Is(err, ErrInvalidEnvelope) ||
		errors.Is(err, ErrUnrecognizedResponse) ||
		errors.Is(err, ErrInvalidModelOutput)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// NotFound wraps error as not found
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps error as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Internal wraps error as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// InvalidModelOutput wraps error as invalid model output
func InvalidModelOutput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidModelOutput)
}
