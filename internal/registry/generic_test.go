package registry

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericListTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/team/app/tags/list", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"name": "team/app", "tags": ["1.0.0", "1.1.0"]}`))
	}))
	defer srv.Close()

	client := &GenericClient{
		httpClient: srv.Client(),
		host:       strings.TrimPrefix(srv.URL, "http://"),
		scheme:     "http",
	}

	tags, err := client.ListTags(context.Background(), "team/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, tags)
}

func TestGenericListTagsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		w.Write([]byte(`{"tags": ["2.0.0"]}`))
	}))
	defer srv.Close()

	client := &GenericClient{
		httpClient: srv.Client(),
		host:       strings.TrimPrefix(srv.URL, "http://"),
		scheme:     "http",
		creds:      Credentials{Username: "user", Password: "pass"},
	}

	tags, err := client.ListTags(context.Background(), "team/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.0"}, tags)
}

func TestGenericListTagsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := &GenericClient{
		httpClient: srv.Client(),
		host:       strings.TrimPrefix(srv.URL, "http://"),
		scheme:     "http",
	}

	_, err := client.ListTags(context.Background(), "team/missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
