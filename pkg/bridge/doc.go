// Package bridge implements a third-party-OAuth authorization code bridge:
// a downstream client obtains a token for a protected API by delegating user
// authentication to an upstream identity provider (e.g. GitHub), after which
// a minted, provider-agnostic grant is handed back to the client together
// with trusted user identity metadata.
//
// The flow has two phases. The authorize initiator validates the incoming
// downstream request, encodes it into an opaque round-trip state token, and
// redirects to the upstream authorize endpoint. The callback completer
// decodes that token, exchanges the upstream authorization code for an
// access token, fetches the user's identity, and asks the
// AuthorizationProvider collaborator to finalize the downstream grant.
//
// No server-side session state exists between the two phases: the state
// token is a self-contained encoding of the original request, so arbitrarily
// many flows can be in flight concurrently with no coordination. The token
// is unsigned by default; pass WithSignedState to authenticate it with
// HMAC-SHA256 when the redirect path is untrusted.
//
// # Usage
//
//	svc := bridge.New(provider, upstream.NewGitHub(ghCfg),
//		bridge.WithLogger(log),
//		bridge.WithCallbackPath("/oauth/callback"),
//	)
//
//	r := chi.NewRouter()
//	r.Mount("/oauth", svc.Handle())
//
// The AuthorizationProvider owns pending-request parsing and grant issuance,
// including any dedup of concurrent completions; the bridge makes exactly
// one completion call per callback and never retries it.
package bridge
