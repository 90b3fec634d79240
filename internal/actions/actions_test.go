package actions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgsmith/pkgsmith/internal/registry"
	"github.com/pkgsmith/pkgsmith/internal/version"
)

type fakeTagSource struct {
	tags map[string][]string
	err  error
}

func (f *fakeTagSource) ListTags(ctx context.Context, owner, repo string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags[owner+"/"+repo], nil
}

const checkoutActionYML = `name: Checkout
description: Check out a repository
inputs:
  repository:
    description: Repository name
    default: ${{ github.repository }}
outputs:
  ref:
    description: The checked-out ref
runs:
  using: node20
  main: dist/index.js
`

func newTestFetcher(srv *httptest.Server, tags TagSource) *Fetcher {
	return &Fetcher{
		tags:       tags,
		resolver:   version.NewResolver(),
		httpClient: srv.Client(),
		rawURL:     srv.URL,
	}
}

func TestFetchAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/actions/checkout/v4.2.2/action.yml":
			w.Write([]byte(checkoutActionYML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tags := &fakeTagSource{tags: map[string][]string{
		"actions/checkout": {"v4.2.2", "v4.2.1", "v4.2.0"},
	}}
	fetcher := newTestFetcher(srv, tags)

	result, lookupErr := fetcher.Fetch(context.Background(), "actions/checkout", false)
	require.Nil(t, lookupErr)

	assert.Equal(t, "actions/checkout", result.Name)
	assert.Equal(t, "v4.2.2", result.LatestTag)
	assert.Contains(t, result.Metadata.Inputs, "repository")
	assert.Contains(t, result.Metadata.Outputs, "ref")
	assert.Equal(t, "node20", result.Metadata.Runs["using"])
	assert.Empty(t, result.Readme)
}

func TestFetchActionFallsBackToActionYAML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/owner/repo/v1.0.0/action.yaml" {
			w.Write([]byte("runs:\n  using: docker\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tags := &fakeTagSource{tags: map[string][]string{"owner/repo": {"v1.0.0"}}}
	fetcher := newTestFetcher(srv, tags)

	result, lookupErr := fetcher.Fetch(context.Background(), "owner/repo", false)
	require.Nil(t, lookupErr)
	assert.Equal(t, "docker", result.Metadata.Runs["using"])
}

func TestFetchActionIncludesReadme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/owner/repo/v1.0.0/action.yml":
			w.Write([]byte("runs:\n  using: node20\n"))
		case "/owner/repo/v1.0.0/README.md":
			w.Write([]byte("# My Action\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tags := &fakeTagSource{tags: map[string][]string{"owner/repo": {"v1.0.0"}}}
	fetcher := newTestFetcher(srv, tags)

	result, lookupErr := fetcher.Fetch(context.Background(), "owner/repo", true)
	require.Nil(t, lookupErr)
	assert.Equal(t, "# My Action\n", result.Readme)
}

func TestFetchActionMissingReadmeIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/owner/repo/v1.0.0/action.yml" {
			w.Write([]byte("runs:\n  using: node20\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tags := &fakeTagSource{tags: map[string][]string{"owner/repo": {"v1.0.0"}}}
	fetcher := newTestFetcher(srv, tags)

	result, lookupErr := fetcher.Fetch(context.Background(), "owner/repo", true)
	require.Nil(t, lookupErr)
	assert.Empty(t, result.Readme)
}

func TestFetchActionInvalidName(t *testing.T) {
	fetcher := NewFetcher(&fakeTagSource{})

	tests := []string{"checkout", "a/b/c", "/repo", "owner/"}
	for _, name := range tests {
		_, lookupErr := fetcher.Fetch(context.Background(), name, false)
		require.NotNil(t, lookupErr, name)
		assert.Contains(t, lookupErr.Error, "invalid action name")
	}
}

func TestFetchActionRepoNotFound(t *testing.T) {
	tags := &fakeTagSource{err: &registry.StatusError{
		URL:        "https://api.github.com/repos/nobody/nothing/tags",
		StatusCode: http.StatusNotFound,
	}}
	fetcher := NewFetcher(tags)

	_, lookupErr := fetcher.Fetch(context.Background(), "nobody/nothing", false)
	require.NotNil(t, lookupErr)
	assert.Contains(t, lookupErr.Error, "not found on GitHub")
}

func TestFetchActionTagListError(t *testing.T) {
	tags := &fakeTagSource{err: errors.New("rate limited")}
	fetcher := NewFetcher(tags)

	_, lookupErr := fetcher.Fetch(context.Background(), "owner/repo", false)
	require.NotNil(t, lookupErr)
	assert.Contains(t, lookupErr.Error, "failed to fetch action tags")
}

func TestLatestTagFallsBackToNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("runs:\n  using: node20\n"))
	}))
	defer srv.Close()

	// Hash-pinned tags cannot be ranked; the API's newest-first order wins.
	tags := &fakeTagSource{tags: map[string][]string{
		"owner/repo": {"deadbeefcafe", "feedfacecafe"},
	}}
	fetcher := newTestFetcher(srv, tags)

	result, lookupErr := fetcher.Fetch(context.Background(), "owner/repo", false)
	require.Nil(t, lookupErr)
	assert.Equal(t, "deadbeefcafe", result.LatestTag)
}
