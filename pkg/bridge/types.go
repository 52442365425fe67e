package bridge

import (
	"context"
	"net/http"
)

// AuthRequest is a downstream client's in-flight authorization request.
// It is parsed from the inbound HTTP request by the AuthorizationProvider,
// carried through the upstream redirect cycle inside the state token, and
// consumed exactly once at grant-completion time. The core never persists it.
type AuthRequest struct {
	// ClientID identifies the downstream client. A request without one is
	// invalid and is rejected before any redirect is issued.
	ClientID string `json:"client_id"`

	// RedirectURI is the downstream client's completion target, if the
	// provider requires one to build the final redirect.
	RedirectURI string `json:"redirect_uri,omitempty"`

	// Scope holds the scopes the downstream client asked for.
	Scope []string `json:"scope,omitempty"`

	// State is the downstream client's own opaque state value, echoed back
	// on completion. Distinct from the bridge's round-trip state token.
	State string `json:"state,omitempty"`

	// ResponseType is the downstream OAuth response type, e.g. "code".
	ResponseType string `json:"response_type,omitempty"`

	// Extra carries any provider-specific fields needed later to produce
	// the completion redirect.
	Extra map[string]string `json:"extra,omitempty"`
}

// Token is an upstream access token obtained by exchanging a one-time
// authorization code. The core embeds it in the grant props and never
// stores or refreshes it.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Identity holds upstream-asserted user facts fetched with the access token.
// Login is the stable handle used as the durable user identifier; name and
// email may be absent or change over time.
type Identity struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// GrantProps is the metadata bundle attached to the minted downstream token
// so later API calls on behalf of the user can re-authenticate upstream.
// Owned by the AuthorizationProvider once created; the core only constructs
// and hands it off.
type GrantProps struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"access_token"`
}

// Metadata carries opaque label metadata attached to the downstream grant.
type Metadata struct {
	Label string `json:"label,omitempty"`
}

// Completion is the single grant-completion call the core makes per callback.
type Completion struct {
	Request  AuthRequest
	UserID   string
	Metadata Metadata
	Scope    []string
	Props    GrantProps
}

// Redirect is the completion result returned by the AuthorizationProvider.
type Redirect struct {
	RedirectTo string
}

// AuthorizationProvider owns pending-request parsing and final grant
// issuance. Any concurrency control around grant completion (e.g. preventing
// double-completion of the same pending request) is the provider's
// responsibility; the core calls CompleteAuthorization exactly once per
// callback and never deduplicates concurrent callbacks.
type AuthorizationProvider interface {
	// ParseAuthRequest extracts a downstream authorization request from the
	// raw HTTP request. It is the single place allowed to reject malformed
	// downstream requests.
	ParseAuthRequest(r *http.Request) (AuthRequest, error)

	// CompleteAuthorization finalizes the downstream grant and returns the
	// URL the original client should be redirected to.
	CompleteAuthorization(ctx context.Context, c Completion) (Redirect, error)
}

// Upstream abstracts the third-party identity provider. Implementations
// encapsulate all protocol details (oauth2 config, token exchange, identity
// API calls) and expose only the primitives the core flow needs.
type Upstream interface {
	// AuthCodeURL builds the upstream authorization URL carrying the given
	// round-trip state token and callback redirect URI.
	AuthCodeURL(state, redirectURI string) string

	// Exchange swaps a one-time authorization code for an access token.
	// The redirectURI must equal the one used in AuthCodeURL; upstream
	// providers validate redirect-URI equality. Error payloads reported by
	// the upstream token endpoint surface as *UpstreamError.
	Exchange(ctx context.Context, code, redirectURI string) (Token, error)

	// FetchIdentity calls the upstream's authenticated "who am I" endpoint.
	FetchIdentity(ctx context.Context, token Token) (Identity, error)
}
