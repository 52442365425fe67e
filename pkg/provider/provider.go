// Package provider ships a reference implementation of the bridge's
// AuthorizationProvider collaborator: a static client registry, downstream
// request parsing, and grant completion that mints one-time authorization
// codes backed by a pluggable GrantStore.
package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authbridge/pkg/bridge"
	"github.com/dmitrymomot/authbridge/pkg/logger"
	"github.com/dmitrymomot/authbridge/pkg/scopes"
)

// Client is a downstream client registered with the provider.
type Client struct {
	ID            string
	RedirectURIs  []string
	AllowedScopes []string
}

// Grant is a completed downstream authorization pending pickup, keyed by
// the minted one-time code.
type Grant struct {
	Code      string            `json:"code"`
	ClientID  string            `json:"client_id"`
	UserID    string            `json:"user_id"`
	Label     string            `json:"label,omitempty"`
	Scope     []string          `json:"scope,omitempty"`
	Props     bridge.GrantProps `json:"props"`
	CreatedAt time.Time         `json:"created_at"`
}

// GrantStore persists pending grants between completion and pickup.
// Consume must be one-shot: a second Consume for the same code returns
// ErrGrantNotFound, which is what makes double-completion of the same
// pending request harmless at the storage layer.
type GrantStore interface {
	Save(ctx context.Context, grant Grant, ttl time.Duration) error
	Consume(ctx context.Context, code string) (Grant, error)
}

// Config holds the reference provider configuration.
type Config struct {
	CodeTTL time.Duration `env:"PROVIDER_CODE_TTL" envDefault:"5m"`
}

// Provider implements bridge.AuthorizationProvider against a static client
// registry and a GrantStore.
type Provider struct {
	clients map[string]Client
	store   GrantStore
	codeTTL time.Duration
	logger  *slog.Logger
}

// Option configures the provider during construction.
type Option func(*Provider)

// WithLogger configures the logger for the provider.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// WithCodeTTL sets how long a minted authorization code stays redeemable.
func WithCodeTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.codeTTL = ttl
		}
	}
}

// New constructs the reference provider.
// Defaults: 5 minute code TTL, discard logger.
func New(store GrantStore, clients []Client, opts ...Option) *Provider {
	p := &Provider{
		clients: make(map[string]Client, len(clients)),
		store:   store,
		codeTTL: 5 * time.Minute,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, c := range clients {
		p.clients[c.ID] = c
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseAuthRequest extracts the downstream authorization request from the
// raw request's query parameters and validates it against the client
// registry. This is the single rejection point for malformed downstream
// requests.
func (p *Provider) ParseAuthRequest(r *http.Request) (bridge.AuthRequest, error) {
	q := r.URL.Query()
	req := bridge.AuthRequest{
		ClientID:     q.Get("client_id"),
		RedirectURI:  q.Get("redirect_uri"),
		Scope:        scopes.Parse(q.Get("scope")),
		State:        q.Get("state"),
		ResponseType: q.Get("response_type"),
	}

	if req.ClientID == "" {
		return bridge.AuthRequest{}, ErrMissingClientID
	}

	client, ok := p.clients[req.ClientID]
	if !ok {
		return bridge.AuthRequest{}, ErrUnknownClient
	}

	if req.RedirectURI == "" {
		if len(client.RedirectURIs) == 0 {
			return bridge.AuthRequest{}, ErrRedirectURIMismatch
		}
		req.RedirectURI = client.RedirectURIs[0]
	} else if !registeredRedirect(client, req.RedirectURI) {
		return bridge.AuthRequest{}, ErrRedirectURIMismatch
	}

	if len(client.AllowedScopes) > 0 {
		if err := scopes.Validate(req.Scope, client.AllowedScopes); err != nil {
			return bridge.AuthRequest{}, err
		}
	}

	return req, nil
}

// CompleteAuthorization mints a one-time downstream authorization code,
// persists the grant, and builds the completion redirect for the original
// client. Each call mints a fresh code: callers decide how often to call,
// the provider never dedups for them.
func (p *Provider) CompleteAuthorization(ctx context.Context, c bridge.Completion) (bridge.Redirect, error) {
	client, ok := p.clients[c.Request.ClientID]
	if !ok {
		return bridge.Redirect{}, ErrUnknownClient
	}

	grant := Grant{
		Code:      uuid.NewString(),
		ClientID:  client.ID,
		UserID:    c.UserID,
		Label:     c.Metadata.Label,
		Scope:     c.Scope,
		Props:     c.Props,
		CreatedAt: time.Now(),
	}

	if err := p.store.Save(ctx, grant, p.codeTTL); err != nil {
		return bridge.Redirect{}, err
	}

	p.logger.Info("authorization completed",
		logger.Component("provider"),
		logger.ClientID(client.ID),
		logger.UserID(c.UserID),
	)

	redirectTo, err := completionURL(c.Request, grant.Code)
	if err != nil {
		return bridge.Redirect{}, err
	}
	return bridge.Redirect{RedirectTo: redirectTo}, nil
}

// ConsumeGrant redeems a one-time authorization code for its grant.
// Intended for the host application's downstream token endpoint.
func (p *Provider) ConsumeGrant(ctx context.Context, code string) (Grant, error) {
	return p.store.Consume(ctx, code)
}

func registeredRedirect(c Client, uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// completionURL appends the minted code and the client's own echoed state
// to the downstream redirect URI.
func completionURL(req bridge.AuthRequest, code string) (string, error) {
	u, err := url.Parse(req.RedirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Compile-time interface assertion
var _ bridge.AuthorizationProvider = (*Provider)(nil)
