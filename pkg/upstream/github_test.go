package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authbridge/pkg/bridge"
)

func testConfig(authURL, tokenURL, apiURL string) GitHubConfig {
	return GitHubConfig{
		ClientID:     "bridge-client-id",
		ClientSecret: "bridge-client-secret",
		Scopes:       []string{"read:user", "user:email"},
		AuthURL:      authURL,
		TokenURL:     tokenURL,
		APIBaseURL:   apiURL,
	}
}

func TestGitHub_AuthCodeURL(t *testing.T) {
	t.Parallel()

	gh := NewGitHub(testConfig("https://upstream.example/authorize", "https://upstream.example/token", "https://api.example"))

	raw := gh.AuthCodeURL("round-trip-state", "https://bridge.example/callback")

	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "upstream.example", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "bridge-client-id", q.Get("client_id"))
	assert.Equal(t, "round-trip-state", q.Get("state"))
	assert.Equal(t, "https://bridge.example/callback", q.Get("redirect_uri"))
	assert.Equal(t, "read:user user:email", q.Get("scope"))
}

func TestGitHub_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("returns the token on success", func(t *testing.T) {
		t.Parallel()

		var gotRedirectURI, gotCode string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotCode = r.FormValue("code")
			gotRedirectURI = r.FormValue("redirect_uri")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"gho_token","token_type":"bearer"}`))
		}))
		defer srv.Close()

		gh := NewGitHub(testConfig(srv.URL+"/authorize", srv.URL+"/token", srv.URL))

		tok, err := gh.Exchange(context.Background(), "one-time-code", "https://bridge.example/callback")
		require.NoError(t, err)

		assert.Equal(t, bridge.Token{AccessToken: "gho_token", TokenType: "bearer"}, tok)
		assert.Equal(t, "one-time-code", gotCode)
		assert.Equal(t, "https://bridge.example/callback", gotRedirectURI)
	})

	t.Run("surfaces the upstream error payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad_verification_code"}`))
		}))
		defer srv.Close()

		gh := NewGitHub(testConfig(srv.URL+"/authorize", srv.URL+"/token", srv.URL))

		_, err := gh.Exchange(context.Background(), "expired-code", "https://bridge.example/callback")
		require.Error(t, err)

		var ue *bridge.UpstreamError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
		assert.Contains(t, ue.ContentType, "application/json")
		assert.JSONEq(t, `{"error":"bad_verification_code"}`, string(ue.Body))
	})

	t.Run("transport failure is not an UpstreamError", func(t *testing.T) {
		t.Parallel()

		gh := NewGitHub(testConfig("http://127.0.0.1:1/authorize", "http://127.0.0.1:1/token", "http://127.0.0.1:1"))

		_, err := gh.Exchange(context.Background(), "code", "https://bridge.example/callback")
		require.Error(t, err)

		var ue *bridge.UpstreamError
		assert.False(t, errors.As(err, &ue))
	})
}

func TestGitHub_FetchIdentity(t *testing.T) {
	t.Parallel()

	t.Run("fetches the authenticated user", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user", r.URL.Path)
			assert.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"login":"alice","name":"Alice","email":"a@x.com","id":42}`))
		}))
		defer srv.Close()

		gh := NewGitHub(testConfig(srv.URL+"/authorize", srv.URL+"/token", srv.URL))

		identity, err := gh.FetchIdentity(context.Background(), bridge.Token{AccessToken: "gho_token"})
		require.NoError(t, err)
		assert.Equal(t, bridge.Identity{Login: "alice", Name: "Alice", Email: "a@x.com"}, identity)
	})

	t.Run("fails on non-200 response", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		gh := NewGitHub(testConfig(srv.URL+"/authorize", srv.URL+"/token", srv.URL))

		_, err := gh.FetchIdentity(context.Background(), bridge.Token{AccessToken: "revoked"})
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("fails on malformed body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		gh := NewGitHub(testConfig(srv.URL+"/authorize", srv.URL+"/token", srv.URL))

		_, err := gh.FetchIdentity(context.Background(), bridge.Token{AccessToken: "gho_token"})
		assert.Error(t, err)
	})
}
