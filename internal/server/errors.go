package server

import (
	"errors"
	"fmt"
	"net/http"

	"nutrifases-backend/internal/dispatch"
	"nutrifases-backend/internal/llm"
)

// Kind is the error taxonomy every chat failure is reduced to before it
// reaches the client.
type Kind int

const (
	KindInternal Kind = iota
	KindConfiguration
	KindInvalidRequestBody
	KindMissingHistory
	KindUpstreamProvider
	KindUpstreamTimeout
	KindMalformedNavigation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidRequestBody:
		return "invalid_request_body"
	case KindMissingHistory:
		return "missing_history"
	case KindUpstreamProvider:
		return "upstream_provider"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindMalformedNavigation:
		return "malformed_navigation"
	default:
		return "internal"
	}
}

func statusFor(k Kind) int {
	switch k {
	case KindInvalidRequestBody, KindMissingHistory:
		return http.StatusBadRequest
	case KindConfiguration, KindUpstreamProvider, KindUpstreamTimeout, KindMalformedNavigation, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind plus the client-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return statusFor(e.Kind) }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

var (
	errNotConfigured = newError(KindConfiguration, "configuration error: API key or model is not set", nil)
	errNoHistory     = newError(KindMissingHistory, "no history was sent", nil)
)

// completionError maps a failed completion call onto the taxonomy.
func completionError(err error) *Error {
	var pErr *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return newError(KindUpstreamTimeout, "upstream provider timed out", err)
	case errors.Is(err, llm.ErrUnsupportedHistory):
		return newError(KindInvalidRequestBody, "invalid request: history must end with a user turn", err)
	case errors.As(err, &pErr):
		return newError(KindUpstreamProvider, "upstream provider error: "+pErr.Error(), err)
	default:
		return newError(KindInternal, "internal error while processing the response: "+err.Error(), err)
	}
}

func malformedNavigation(f dispatch.ParseFailure) *Error {
	return newError(KindMalformedNavigation, f.Error(), f.Err)
}
