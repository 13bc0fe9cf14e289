package server

import (
	"errors"
	"net/http"

	llmErrors "github.com/harunnryd/listingai/internal/errors"

	"github.com/labstack/echo/v4"
)

type requestError struct {
	Status   int
	Message  string
	Type     string
	Category string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error struct {
		Message  string `json:"message"`
		Type     string `json:"type"`
		Category string `json:"category,omitempty"`
	} `json:"error"`
}

func writeError(c echo.Context, reqErr requestError) error {
	var payload errorBody
	payload.Error.Message = reqErr.Message
	payload.Error.Type = reqErr.Type
	payload.Error.Category = reqErr.Category
	return c.JSON(reqErr.Status, payload)
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = writeError(c, requestError{Status: he.Code, Message: msg, Type: "invalid_request_error"})
		return
	}

	_ = writeError(c, requestError{Status: http.StatusInternalServerError, Message: "internal server error", Type: "server_error"})
}

// toHTTPError maps the adapter error taxonomy onto response codes. Upstream
// messages are forwarded verbatim so callers see the vendor's reason.
func toHTTPError(err error) error {
	category := llmErrors.Category(err)

	switch {
	case errors.Is(err, llmErrors.ErrInvalidInput):
		return requestError{Status: http.StatusBadRequest, Message: err.Error(), Type: "invalid_request_error", Category: category}
	case errors.Is(err, llmErrors.ErrNotFound):
		return requestError{Status: http.StatusNotFound, Message: err.Error(), Type: "not_found_error", Category: category}
	case llmErrors.IsUpstream(err):
		return requestError{Status: http.StatusBadGateway, Message: err.Error(), Type: "upstream_error", Category: category}
	default:
		return requestError{Status: http.StatusInternalServerError, Message: "internal server error", Type: "server_error", Category: category}
	}
}
