package registry

import (
	"context"
	"fmt"
	"net/http"
)

const defaultNPMRegistry = "https://registry.npmjs.org"

// NPMClient fetches package metadata from an npm registry.
type NPMClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewNPMClient creates a client for the public npm registry.
func NewNPMClient() *NPMClient {
	return &NPMClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		baseURL:    defaultNPMRegistry,
	}
}

// npmPackument is the subset of the npm registry packument we read.
type npmPackument struct {
	DistTags map[string]string `json:"dist-tags"`
	Time     map[string]string `json:"time"`
}

// LatestVersion returns the version the registry's "latest" dist-tag points
// at, with its publication time when available.
func (c *NPMClient) LatestVersion(ctx context.Context, name string) (PackageVersion, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, name)

	var pkg npmPackument
	if err := getJSON(ctx, c.httpClient, url, nil, &pkg); err != nil {
		return PackageVersion{}, err
	}

	latest, ok := pkg.DistTags["latest"]
	if !ok || latest == "" {
		return PackageVersion{}, fmt.Errorf("npm package %s has no latest dist-tag", name)
	}

	return PackageVersion{
		Version:     latest,
		PublishedOn: pkg.Time[latest],
	}, nil
}
