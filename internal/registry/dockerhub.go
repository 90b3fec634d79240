package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DockerHubClient lists image tags from Docker Hub.
type DockerHubClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *time.Ticker
}

// NewDockerHubClient creates a Docker Hub client.
func NewDockerHubClient() *DockerHubClient {
	return &DockerHubClient{
		httpClient:  newHTTPClient(DefaultHTTPTimeout),
		baseURL:     "https://hub.docker.com",
		rateLimiter: time.NewTicker(DefaultRateLimitInterval),
	}
}

// dockerHubTagsResponse is one page of Docker Hub's tags API.
type dockerHubTagsResponse struct {
	Next    string         `json:"next"`
	Results []dockerHubTag `json:"results"`
}

type dockerHubTag struct {
	Name   string `json:"name"`
	Digest string `json:"digest"`
}

// maxPages limits pagination per repository type. Official images carry far
// more tags than user repositories.
func (c *DockerHubClient) maxPages(repository string) int {
	if strings.HasPrefix(repository, "library/") {
		return 5
	}
	return 2
}

// ListTags returns the available tags for a repository such as
// "library/nginx" or "linuxserver/plex", following pagination up to the
// repository-type page limit.
func (c *DockerHubClient) ListTags(ctx context.Context, repository string) ([]string, error) {
	url := fmt.Sprintf("%s/v2/repositories/%s/tags?page_size=100", c.baseURL, repository)

	var tags []string
	for page := 0; url != "" && page < c.maxPages(repository); page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.rateLimiter.C:
		}

		var resp dockerHubTagsResponse
		if err := getJSON(ctx, c.httpClient, url, nil, &resp); err != nil {
			return nil, err
		}
		for _, tag := range resp.Results {
			tags = append(tags, tag.Name)
		}
		url = resp.Next
	}

	if len(tags) == 0 {
		return nil, fmt.Errorf("no tags found for repository %s", repository)
	}
	return tags, nil
}

// TagDigest returns the manifest digest for one tag.
func (c *DockerHubClient) TagDigest(ctx context.Context, repository, tag string) (string, error) {
	url := fmt.Sprintf("%s/v2/repositories/%s/tags/%s", c.baseURL, repository, tag)

	var resp dockerHubTag
	if err := getJSON(ctx, c.httpClient, url, nil, &resp); err != nil {
		return "", err
	}
	return resp.Digest, nil
}
