package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGHCRListTags(t *testing.T) {
	tokenRequests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			tokenRequests++
			assert.Equal(t, "repository:linuxserver/plex:pull", r.URL.Query().Get("scope"))
			w.Write([]byte(`{"token": "pull-token"}`))
		case "/v2/linuxserver/plex/tags/list":
			assert.Equal(t, "Bearer pull-token", r.Header.Get("Authorization"))
			w.Write([]byte(`{"name": "linuxserver/plex", "tags": ["1.41.0", "1.41.1", "latest"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := &GHCRClient{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		tokenCache: make(map[string]bearerToken),
	}

	tags, err := client.ListTags(context.Background(), "linuxserver/plex")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.41.0", "1.41.1", "latest"}, tags)

	// Second listing reuses the cached pull token.
	_, err = client.ListTags(context.Background(), "linuxserver/plex")
	require.NoError(t, err)
	assert.Equal(t, 1, tokenRequests)
}

func TestGHCRAuthenticatedTokenExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			assert.Equal(t, "Bearer ghp_secret", r.Header.Get("Authorization"))
			w.Write([]byte(`{"token": "scoped-token"}`))
			return
		}
		w.Write([]byte(`{"tags": ["0.1.0"]}`))
	}))
	defer srv.Close()

	client := &GHCRClient{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		token:      "ghp_secret",
		tokenCache: make(map[string]bearerToken),
	}

	tags, err := client.ListTags(context.Background(), "owner/private")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.1.0"}, tags)
}

func TestGHCREmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": ""}`))
	}))
	defer srv.Close()

	client := &GHCRClient{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		tokenCache: make(map[string]bearerToken),
	}

	_, err := client.ListTags(context.Background(), "owner/app")
	require.Error(t, err)
}
