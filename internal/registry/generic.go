package registry

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
)

// GenericClient lists image tags from any Docker Registry V2 host.
type GenericClient struct {
	httpClient *http.Client
	host       string
	scheme     string
	creds      Credentials
}

// NewGenericClient creates a client for one registry host.
func NewGenericClient(host string, creds Credentials) *GenericClient {
	return &GenericClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		host:       host,
		scheme:     "https",
		creds:      creds,
	}
}

// ListTags returns the tags of a repository via the V2 tags/list endpoint.
func (c *GenericClient) ListTags(ctx context.Context, repository string) ([]string, error) {
	url := fmt.Sprintf("%s://%s/v2/%s/tags/list", c.scheme, c.host, repository)

	var headers map[string]string
	if c.creds.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.creds.Username + ":" + c.creds.Password))
		headers = map[string]string{"Authorization": "Basic " + auth}
	}

	var resp struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	if err := getJSON(ctx, c.httpClient, url, headers, &resp); err != nil {
		return nil, err
	}
	if len(resp.Tags) == 0 {
		return nil, fmt.Errorf("no tags found for repository %s on %s", repository, c.host)
	}
	return resp.Tags, nil
}
