package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/dmitrymomot/authbridge/pkg/bridge"
)

// ProviderGithub is the stable identifier for the GitHub upstream.
const ProviderGithub = "github"

// GitHubConfig holds configuration for the GitHub upstream provider.
// AuthURL and TokenURL default to github.com and exist for tests and
// GitHub Enterprise installations.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user user:email"`
	AuthURL      string   `env:"GITHUB_OAUTH_AUTH_URL"`
	TokenURL     string   `env:"GITHUB_OAUTH_TOKEN_URL"`
	APIBaseURL   string   `env:"GITHUB_API_BASE_URL" envDefault:"https://api.github.com"`
}

// GitHub implements bridge.Upstream on top of golang.org/x/oauth2.
// The redirect URI is supplied per call rather than fixed at construction
// because the bridge derives it from each request's own origin.
type GitHub struct {
	conf       *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// GitHubOption configures the GitHub adapter during construction.
type GitHubOption func(*GitHub)

// WithHTTPClient replaces the HTTP client used for both the token exchange
// and identity API calls.
func WithHTTPClient(c *http.Client) GitHubOption {
	return func(g *GitHub) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// NewGitHub creates a GitHub upstream provider adapter.
func NewGitHub(cfg GitHubConfig, opts ...GitHubOption) *GitHub {
	endpoint := github.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	g := &GitHub{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		apiBaseURL: cfg.APIBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AuthCodeURL builds the GitHub authorization URL with the given round-trip
// state token and per-request redirect URI.
func (g *GitHub) AuthCodeURL(state, redirectURI string) string {
	return g.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
}

// Exchange swaps the one-time authorization code for an access token.
// The redirectURI must equal the one sent with AuthCodeURL; GitHub validates
// redirect-URI equality and fails the exchange on mismatch. Error payloads
// reported by the token endpoint surface as *bridge.UpstreamError so the
// caller can forward them unchanged.
func (g *GitHub) Exchange(ctx context.Context, code, redirectURI string) (bridge.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	tok, err := g.conf.Exchange(ctx, code, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return bridge.Token{}, &bridge.UpstreamError{
				StatusCode:  re.Response.StatusCode,
				ContentType: re.Response.Header.Get("Content-Type"),
				Body:        re.Body,
			}
		}
		return bridge.Token{}, fmt.Errorf("github token exchange: %w", err)
	}

	return bridge.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

// FetchIdentity calls GitHub's authenticated user endpoint.
func (g *GitHub) FetchIdentity(ctx context.Context, token bridge.Token) (bridge.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+"/user", nil)
	if err != nil {
		return bridge.Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return bridge.Identity{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return bridge.Identity{}, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	var identity bridge.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return bridge.Identity{}, err
	}

	return identity, nil
}

// Compile-time interface assertion
var _ bridge.Upstream = (*GitHub)(nil)
