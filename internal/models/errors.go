package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindInternalHandlerError ErrorKind = iota
	KindValidationError
	KindUpstreamTimeout
	KindUpstreamUnavailable
	KindUpstreamProtocolError
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidationError:
		return "validation_error"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamProtocolError:
		return "upstream_protocol_error"
	default:
		return "internal_handler_error"
	}
}

// HTTPStatus is the status code a RelayError of this kind is answered with
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidationError:
		return http.StatusBadRequest
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamUnavailable, KindUpstreamProtocolError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RelayError is every error the relay reports to a caller. Message is the
// human-readable detail sent back verbatim.
type RelayError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RelayError) Unwrap() error { return e.Cause }

func NewValidationError(msg string) *RelayError {
	return &RelayError{Kind: KindValidationError, Message: msg}
}

func NewUpstreamTimeout(cause error) *RelayError {
	return &RelayError{Kind: KindUpstreamTimeout, Message: "Timeout waiting for n8n response", Cause: cause}
}

func NewUpstreamUnavailable(cause error) *RelayError {
	return &RelayError{Kind: KindUpstreamUnavailable, Message: fmt.Sprintf("Error connecting to n8n: %v", cause), Cause: cause}
}

func NewUpstreamProtocolError(status int, body string) *RelayError {
	return &RelayError{Kind: KindUpstreamProtocolError, Message: fmt.Sprintf("Error querying n8n: status %d: %s", status, body)}
}

func NewInternalHandlerError(cause error) *RelayError {
	return &RelayError{Kind: KindInternalHandlerError, Message: cause.Error(), Cause: cause}
}

// AsRelayError classifies any error; unknown errors are internal handler errors
func AsRelayError(err error) *RelayError {
	var re *RelayError
	if errors.As(err, &re) {
		return re
	}
	return NewInternalHandlerError(err)
}
