package registry

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// GHCRClient lists image tags from the GitHub Container Registry.
type GHCRClient struct {
	httpClient *http.Client
	baseURL    string
	token      string

	mu         sync.RWMutex
	tokenCache map[string]bearerToken
}

type bearerToken struct {
	value     string
	expiresAt time.Time
}

// NewGHCRClient creates a GHCR client. token is an optional GitHub PAT;
// without it the anonymous pull token is used, which works for public
// images only.
func NewGHCRClient(token string) *GHCRClient {
	return &GHCRClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		baseURL:    "https://ghcr.io",
		token:      token,
		tokenCache: make(map[string]bearerToken),
	}
}

type ghcrTokenResponse struct {
	Token string `json:"token"`
}

type ghcrTagsResponse struct {
	Tags []string `json:"tags"`
}

// ListTags returns the available tags for a repository such as
// "linuxserver/plex".
func (c *GHCRClient) ListTags(ctx context.Context, repository string) ([]string, error) {
	token, err := c.pullToken(ctx, repository)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v2/%s/tags/list?n=1000", c.baseURL, repository)
	headers := map[string]string{"Authorization": "Bearer " + token}

	var resp ghcrTagsResponse
	if err := getJSON(ctx, c.httpClient, url, headers, &resp); err != nil {
		return nil, err
	}
	if len(resp.Tags) == 0 {
		return nil, fmt.Errorf("no tags found for repository %s", repository)
	}
	return resp.Tags, nil
}

// pullToken exchanges credentials for a registry bearer token, caching it
// until shortly before expiry.
func (c *GHCRClient) pullToken(ctx context.Context, repository string) (string, error) {
	c.mu.RLock()
	cached, ok := c.tokenCache[repository]
	c.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	url := fmt.Sprintf("%s/token?service=ghcr.io&scope=repository:%s:pull", c.baseURL, repository)
	var headers map[string]string
	if c.token != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.token}
	}

	var resp ghcrTokenResponse
	if err := getJSON(ctx, c.httpClient, url, headers, &resp); err != nil {
		return "", fmt.Errorf("failed to obtain GHCR pull token: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("GHCR returned an empty pull token for %s", repository)
	}

	c.mu.Lock()
	c.tokenCache[repository] = bearerToken{
		value:     resp.Token,
		expiresAt: time.Now().Add(4 * time.Minute),
	}
	c.mu.Unlock()

	return resp.Token, nil
}
