package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkgsmith/pkgsmith/internal/version"
	"gopkg.in/yaml.v3"
)

// HelmClient fetches chart metadata from Helm repository indexes.
type HelmClient struct {
	httpClient *http.Client
	resolver   *version.Resolver
}

// NewHelmClient creates a Helm repository client.
func NewHelmClient(resolver *version.Resolver) *HelmClient {
	return &HelmClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		resolver:   resolver,
	}
}

// helmIndex is the subset of a Helm repository index.yaml we read.
type helmIndex struct {
	Entries map[string][]helmChartVersion `yaml:"entries"`
}

type helmChartVersion struct {
	Version string `yaml:"version"`
	Created string `yaml:"created"`
	Digest  string `yaml:"digest"`
}

// LatestVersion resolves the latest version of a chart addressed by a chart
// URL such as "https://charts.bitnami.com/bitnami/nginx": the last path
// segment names the chart, the rest is the repository whose index.yaml
// lists every chart version.
func (c *HelmClient) LatestVersion(ctx context.Context, chartURL, hint string) (PackageVersion, error) {
	repoURL, chart, err := splitChartURL(chartURL)
	if err != nil {
		return PackageVersion{}, err
	}

	body, err := doGET(ctx, c.httpClient, repoURL+"/index.yaml", nil)
	if err != nil {
		return PackageVersion{}, err
	}

	var index helmIndex
	if err := yaml.Unmarshal(body, &index); err != nil {
		return PackageVersion{}, fmt.Errorf("failed to decode index.yaml from %s: %w", repoURL, err)
	}

	entries, ok := index.Entries[chart]
	if !ok || len(entries) == 0 {
		return PackageVersion{}, &StatusError{
			URL:        chartURL,
			StatusCode: http.StatusNotFound,
			Body:       fmt.Sprintf("chart %q not present in repository index", chart),
		}
	}

	versions := make([]string, len(entries))
	for i, entry := range entries {
		versions[i] = entry.Version
	}

	resolved, ok := c.resolver.Resolve(versions, hint)
	if !ok {
		// Index entries are ordered newest first by convention.
		resolved = entries[0].Version
	}

	result := PackageVersion{Version: resolved}
	for _, entry := range entries {
		if entry.Version == resolved {
			result.PublishedOn = entry.Created
			result.Digest = entry.Digest
			break
		}
	}
	return result, nil
}

// splitChartURL separates a chart URL into repository URL and chart name.
func splitChartURL(chartURL string) (repoURL, chart string, err error) {
	parsed, err := url.Parse(chartURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", "", fmt.Errorf("invalid chart URL %q: expected https://host/repo/chart", chartURL)
	}

	trimmed := strings.TrimRight(parsed.Path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", "", fmt.Errorf("invalid chart URL %q: missing chart name", chartURL)
	}

	parsed.Path = trimmed[:idx]
	return parsed.String(), trimmed[idx+1:], nil
}
