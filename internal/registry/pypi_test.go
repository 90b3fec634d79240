package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPyPILatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pypi/requests/json", r.URL.Path)
		w.Write([]byte(`{
			"info": {"version": "2.32.5"},
			"releases": {
				"2.32.5": [
					{"upload_time_iso_8601": "2025-08-18T20:46:00Z", "digests": {"sha256": "abc123"}}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := &PyPIClient{httpClient: srv.Client(), baseURL: srv.URL}
	got, err := client.LatestVersion(context.Background(), "requests")
	require.NoError(t, err)

	assert.Equal(t, "2.32.5", got.Version)
	assert.Equal(t, "2025-08-18T20:46:00Z", got.PublishedOn)
	assert.Equal(t, "sha256:abc123", got.Digest)
}

func TestPyPILatestVersionWithoutFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info": {"version": "1.0.0"}, "releases": {}}`))
	}))
	defer srv.Close()

	client := &PyPIClient{httpClient: srv.Client(), baseURL: srv.URL}
	got, err := client.LatestVersion(context.Background(), "bare")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", got.Version)
	assert.Empty(t, got.PublishedOn)
	assert.Empty(t, got.Digest)
}

func TestPyPIProjectNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := &PyPIClient{httpClient: srv.Client(), baseURL: srv.URL}
	_, err := client.LatestVersion(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
