package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for different categories
var (
	// ErrRequestFailed - the HTTP exchange itself failed (network, timeout, cancellation)
	ErrRequestFailed = errors.New("request failed")

	// ErrAPI - the vendor reported an error in the response body
	ErrAPI = errors.New("API error")

	// ErrInvalidEnvelope - response body is not a JSON object
	ErrInvalidEnvelope = errors.New("returned invalid JSON")

	// ErrUnrecognizedResponse - none of the known response shapes matched
	ErrUnrecognizedResponse = errors.New("response format not recognized")

	// ErrInvalidModelOutput - model returned malformed structured output (strict mode only)
	ErrInvalidModelOutput = errors.New("invalid model output")

	// ErrInvalidInput - invalid input or configuration
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found
	ErrNotFound = errors.New("not found")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)

// UnknownErrorMessage is reported when a vendor error carries no message.
const UnknownErrorMessage = "Unknown error"

// APIError carries a vendor-reported failure.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = UnknownErrorMessage
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, msg)
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// RequestFailed wraps a transport error; both the category and the cause stay matchable.
func RequestFailed(provider string, err error) error {
	return fmt.Errorf("%s %w: %w", provider, ErrRequestFailed, err)
}

// InvalidEnvelope reports a response body that could not be parsed as a JSON object
func InvalidEnvelope(provider string) error {
	return fmt.Errorf("%s %w", provider, ErrInvalidEnvelope)
}

// UnrecognizedResponse reports a body that matched no known shape
func UnrecognizedResponse(provider string) error {
	return fmt.Errorf("%s %w", provider, ErrUnrecognizedResponse)
}
