package registry

import (
	"context"
	"fmt"
	"net/http"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubClient fetches repository tags from the GitHub API.
type GitHubClient struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

// NewGitHubClient creates a GitHub API client. token is optional; without
// it requests count against the anonymous rate limit.
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		apiURL:     defaultGitHubAPI,
		token:      token,
	}
}

// githubTag is one entry of the repository tags API response.
type githubTag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// ListTags returns the tag names of a repository, most recent first as the
// API reports them. One page of 100 covers the recent history that latest
// resolution cares about.
func (c *GitHubClient) ListTags(ctx context.Context, owner, repo string) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=100", c.apiURL, owner, repo)

	var tags []githubTag
	if err := getJSON(ctx, c.httpClient, url, c.headers(), &tags); err != nil {
		return nil, err
	}

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names, nil
}

func (c *GitHubClient) headers() map[string]string {
	headers := map[string]string{
		"Accept": "application/vnd.github.v3+json",
	}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	return headers
}
