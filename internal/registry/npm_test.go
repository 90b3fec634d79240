package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPMLatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/express", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"dist-tags": {"latest": "5.1.0"},
			"time": {"5.1.0": "2025-03-31T16:20:22.126Z", "5.0.0": "2024-09-10T00:00:00.000Z"}
		}`))
	}))
	defer srv.Close()

	client := &NPMClient{httpClient: srv.Client(), baseURL: srv.URL}
	got, err := client.LatestVersion(context.Background(), "express")
	require.NoError(t, err)

	assert.Equal(t, "5.1.0", got.Version)
	assert.Equal(t, "2025-03-31T16:20:22.126Z", got.PublishedOn)
	assert.Empty(t, got.Digest)
}

func TestNPMPackageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := &NPMClient{httpClient: srv.Client(), baseURL: srv.URL}
	_, err := client.LatestVersion(context.Background(), "no-such-package-xyz")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestNPMMissingLatestDistTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dist-tags": {}}`))
	}))
	defer srv.Close()

	client := &NPMClient{httpClient: srv.Client(), baseURL: srv.URL}
	_, err := client.LatestVersion(context.Background(), "odd-package")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}
