package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFull      = errors.New("session is full")
	ErrSessionExists    = errors.New("session already exists")
	ErrUnauthorized     = errors.New("only the host can do that")
	ErrMalformedRequest = errors.New("malformed request")
	ErrRateLimited      = errors.New("too many requests")
	ErrInternal         = errors.New("internal error")
)

// Wire codes for errors reported back to the originating connection.
const (
	CodeSessionNotFound  = "session_not_found"
	CodeSessionFull      = "session_full"
	CodeUnauthorized     = "unauthorized"
	CodeMalformedRequest = "malformed_request"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// CodeOf maps an error chain onto its wire code.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrSessionFull):
		return CodeSessionFull
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrMalformedRequest):
		return CodeMalformedRequest
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// MessageOf is the human readable text sent along with the code.
func MessageOf(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, ErrSessionFull):
		return "Session is full"
	case errors.Is(err, ErrUnauthorized):
		return "Only the host can do that"
	case errors.Is(err, ErrRateLimited):
		return "Too many requests"
	case errors.Is(err, ErrInternal):
		return "Internal error"
	default:
		return err.Error()
	}
}
