package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/satriahrh/arunika/avatar/domain"
)

// Error codes shared by the HTTP and WebSocket surfaces
const (
	CodeInvalidRequest        = "invalid_request"
	CodeTimeout               = "timeout"
	CodeCancelled             = "cancelled"
	CodeUpstream              = "upstream_error"
	CodeMalformedUpstream     = "malformed_upstream_output"
	CodeArtifactIO            = "artifact_io_error"
	CodeProviderNotConfigured = "provider_not_configured"
	CodeInternal              = "internal_error"
)

// Error is the body written for a failed request
type Error struct {
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// FromError maps a pipeline error to its public form and HTTP status.
// Unknown errors are reported as internal without leaking details.
func FromError(err error) (*Error, int) {
	if err == nil {
		return nil, http.StatusOK
	}

	// Timeouts first: upstream timeouts wrap both ErrUpstreamCall and DeadlineExceeded.
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: "request timed out"}, http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Code: CodeCancelled, Message: "request cancelled"}, http.StatusRequestTimeout
	}

	switch {
	case errors.Is(err, domain.ErrMalformedUpstreamOutput):
		return &Error{Code: CodeMalformedUpstream, Message: "the language model returned an unexpected reply"}, http.StatusBadGateway
	case errors.Is(err, domain.ErrUpstreamCall):
		return &Error{Code: CodeUpstream, Message: err.Error()}, http.StatusBadGateway
	case errors.Is(err, domain.ErrArtifactIO):
		return &Error{Code: CodeArtifactIO, Message: "failed to read or write audio artifacts"}, http.StatusInternalServerError
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return &Error{Code: CodeProviderNotConfigured, Message: "this provider is not configured"}, http.StatusServiceUnavailable
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, http.StatusBadRequest
	}

	return &Error{Code: CodeInternal, Message: "internal error"}, http.StatusInternalServerError
}
