package provider

import "errors"

var (
	// ErrMissingClientID is returned when the downstream request carries no
	// client identifier.
	ErrMissingClientID = errors.New("provider: missing client_id")
	// ErrUnknownClient is returned for client identifiers not present in
	// the registry.
	ErrUnknownClient = errors.New("provider: unknown client")
	// ErrRedirectURIMismatch is returned when the requested redirect URI is
	// not registered for the client.
	ErrRedirectURIMismatch = errors.New("provider: redirect_uri not registered for client")
	// ErrGrantNotFound is returned when a code is unknown, expired, or
	// already consumed.
	ErrGrantNotFound = errors.New("provider: grant not found or already consumed")
)
