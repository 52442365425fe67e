package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when the downstream authorization request
	// is malformed or lacks a client identifier.
	ErrInvalidRequest = errors.New("bridge: invalid authorization request")

	// ErrInvalidState is returned when the round-trip state token is missing,
	// undecodable, or decodes to a request without a client identifier.
	ErrInvalidState = errors.New("bridge: invalid state token")

	// ErrInvalidIdentity is returned when the upstream identity response
	// lacks the stable login handle.
	ErrInvalidIdentity = errors.New("bridge: upstream identity missing login")

	// ErrStateSignature is returned by the signed codec when verification
	// of the state token's MAC fails.
	ErrStateSignature = errors.New("bridge: state token signature mismatch")
)

// UpstreamError carries an error response reported by the upstream token
// endpoint. The callback handler forwards it to the caller verbatim:
// original status code, content type, and body, with no wrapping.
type UpstreamError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
