package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkgsmith/pkgsmith/internal/identifier"
	"github.com/pkgsmith/pkgsmith/internal/version"
)

// TerraformClient fetches provider versions from Terraform registries.
type TerraformClient struct {
	httpClient *http.Client
	resolver   *version.Resolver
	scheme     string
}

// NewTerraformClient creates a Terraform registry client.
func NewTerraformClient(resolver *version.Resolver) *TerraformClient {
	return &TerraformClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		resolver:   resolver,
		scheme:     "https",
	}
}

// terraformVersionsResponse is the registry /versions API response.
type terraformVersionsResponse struct {
	Versions []struct {
		Version string `json:"version"`
	} `json:"versions"`
}

// LatestVersion resolves the latest version of a provider.
func (c *TerraformClient) LatestVersion(ctx context.Context, provider identifier.TerraformProvider, hint string) (PackageVersion, error) {
	url := fmt.Sprintf("%s://%s/v1/providers/%s/%s/versions",
		c.scheme, provider.Registry, provider.Namespace, provider.Type)

	var resp terraformVersionsResponse
	if err := getJSON(ctx, c.httpClient, url, nil, &resp); err != nil {
		return PackageVersion{}, err
	}

	versions := make([]string, len(resp.Versions))
	for i, v := range resp.Versions {
		versions[i] = v.Version
	}

	resolved, ok := c.resolver.Resolve(versions, hint)
	if !ok {
		return PackageVersion{}, fmt.Errorf("no resolvable versions for provider %s/%s/%s",
			provider.Registry, provider.Namespace, provider.Type)
	}
	return PackageVersion{Version: resolved}, nil
}
