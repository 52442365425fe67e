package bridge

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authbridge/pkg/logger"
)

// Service implements the two-phase authorization bridge: the authorize
// initiator and the callback completer. Each request is handled
// independently; all cross-phase state travels inside the round-trip state
// token embedded in the redirect URL, never in server memory.
type Service struct {
	provider     AuthorizationProvider
	upstream     Upstream
	codec        StateCodec
	logger       *slog.Logger
	callbackPath string
}

// Option configures the bridge service during construction.
type Option func(*Service)

// WithLogger configures the logger for the bridge service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithStateCodec replaces the default unsigned state codec.
func WithStateCodec(c StateCodec) Option {
	return func(s *Service) {
		s.codec = c
	}
}

// WithSignedState switches the round-trip state token to the HMAC-SHA256
// signed codec under the given secret.
func WithSignedState(secret []byte) Option {
	return func(s *Service) {
		s.codec = NewSignedStateCodec(secret)
	}
}

// WithCallbackPath sets the absolute path of the callback route as seen by
// the upstream provider. It must match wherever Handle() ends up mounted.
// Defaults to "/callback".
func WithCallbackPath(path string) Option {
	return func(s *Service) {
		s.callbackPath = path
	}
}

// New constructs the bridge service.
// Defaults: unsigned state codec, discard logger, callback path "/callback".
func New(provider AuthorizationProvider, upstream Upstream, opts ...Option) *Service {
	s := &Service{
		provider:     provider,
		upstream:     upstream,
		codec:        NewStateCodec(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		callbackPath: "/callback",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the HTTP surface of the bridge: GET /authorize and
// GET /callback, suitable for mounting under a base path.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/authorize", s.handleAuthorize)
	r.Get("/callback", s.handleCallback)
	return r
}

// handleAuthorize validates the downstream authorization request, encodes it
// into the round-trip state token, and redirects to the upstream authorize
// endpoint. No side effects beyond the response; no storage write.
func (s *Service) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	req, err := s.provider.ParseAuthRequest(r)
	if err != nil || req.ClientID == "" {
		s.logger.Debug("rejected authorization request",
			logger.Component("bridge"),
			logger.Error(err),
		)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	state, err := s.codec.Encode(req)
	if err != nil {
		s.logger.Error("failed to encode state token",
			logger.Component("bridge"),
			logger.ClientID(req.ClientID),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, s.upstream.AuthCodeURL(state, s.callbackURL(r)), http.StatusFound)
}

// handleCallback is a single linear attempt: decode state, exchange the code,
// fetch identity, complete the grant, redirect. Any step's failure produces a
// terminal error response; no retries, no partial state, since the only
// durable write (grant completion) is the last step.
func (s *Service) handleCallback(w http.ResponseWriter, r *http.Request) {
	req, err := s.codec.Decode(r.URL.Query().Get("state"))
	if err != nil || req.ClientID == "" {
		s.logger.Debug("rejected callback state",
			logger.Component("bridge"),
			logger.Error(err),
		)
		http.Error(w, "Invalid state", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	token, err := s.upstream.Exchange(ctx, r.URL.Query().Get("code"), s.callbackURL(r))
	if err != nil {
		s.logger.Error("upstream token exchange failed",
			logger.Component("bridge"),
			logger.ClientID(req.ClientID),
			logger.Error(err),
		)
		s.writeExchangeError(w, err)
		return
	}

	identity, err := s.upstream.FetchIdentity(ctx, token)
	if err == nil && identity.Login == "" {
		err = ErrInvalidIdentity
	}
	if err != nil {
		s.logger.Error("upstream identity fetch failed",
			logger.Component("bridge"),
			logger.ClientID(req.ClientID),
			logger.Error(err),
		)
		http.Error(w, "Failed to fetch upstream identity", http.StatusBadGateway)
		return
	}

	res, err := s.provider.CompleteAuthorization(ctx, Completion{
		Request:  req,
		UserID:   identity.Login,
		Metadata: Metadata{Label: identity.Name},
		Scope:    req.Scope,
		Props: GrantProps{
			Login:       identity.Login,
			Name:        identity.Name,
			Email:       identity.Email,
			AccessToken: token.AccessToken,
		},
	})
	if err != nil {
		// Never retried: a second completion call risks duplicate grants.
		s.logger.Error("authorization completion failed",
			logger.Component("bridge"),
			logger.ClientID(req.ClientID),
			logger.UserID(identity.Login),
			logger.Error(err),
		)
		http.Error(w, "Failed to complete authorization", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, res.RedirectTo, http.StatusFound)
}

// writeExchangeError forwards the upstream token endpoint's own error
// response unchanged when one exists; transport-level failures, which carry
// no upstream response, map to 502.
func (s *Service) writeExchangeError(w http.ResponseWriter, err error) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.ContentType != "" {
			w.Header().Set("Content-Type", ue.ContentType)
		}
		w.WriteHeader(ue.StatusCode)
		_, _ = w.Write(ue.Body)
		return
	}
	http.Error(w, "Upstream token exchange failed", http.StatusBadGateway)
}

// callbackURL derives the redirect URI from the current request's own origin
// plus the fixed callback path. It is never taken from user input, which
// rules out open-redirect and callback-confusion attacks. The same value is
// sent on both hops because upstream providers validate redirect-URI
// equality between the authorize and token-exchange calls.
func (s *Service) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + s.callbackPath
}
