package registry

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkgsmith/pkgsmith/internal/identifier"
	"github.com/pkgsmith/pkgsmith/internal/version"
)

// MavenClient fetches artifact metadata from Maven repositories.
type MavenClient struct {
	httpClient *http.Client
	resolver   *version.Resolver
}

// NewMavenClient creates a Maven repository client.
func NewMavenClient(resolver *version.Resolver) *MavenClient {
	return &MavenClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		resolver:   resolver,
	}
}

// mavenMetadata is the subset of maven-metadata.xml we read.
type mavenMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	Versioning struct {
		Latest   string `xml:"latest"`
		Release  string `xml:"release"`
		Versions struct {
			Version []string `xml:"version"`
		} `xml:"versions"`
	} `xml:"versioning"`
}

// LatestVersion resolves the latest version of an artifact. hint, when
// non-empty, constrains the answer to the hint's compatibility profile.
func (c *MavenClient) LatestVersion(ctx context.Context, coord identifier.Maven, hint string) (PackageVersion, error) {
	url := metadataURL(coord)

	body, err := doGET(ctx, c.httpClient, url, nil)
	if err != nil {
		return PackageVersion{}, err
	}

	var metadata mavenMetadata
	if err := xml.Unmarshal(body, &metadata); err != nil {
		return PackageVersion{}, fmt.Errorf("failed to decode maven-metadata.xml from %s: %w", url, err)
	}

	versions := metadata.Versioning.Versions.Version
	if resolved, ok := c.resolver.Resolve(versions, hint); ok {
		return PackageVersion{Version: resolved}, nil
	}

	// The version list may be empty or all-noise; fall back to the
	// repository's own idea of the release.
	if metadata.Versioning.Release != "" {
		return PackageVersion{Version: metadata.Versioning.Release}, nil
	}
	if metadata.Versioning.Latest != "" {
		return PackageVersion{Version: metadata.Versioning.Latest}, nil
	}

	return PackageVersion{}, fmt.Errorf("no versions found for %s:%s", coord.GroupID, coord.ArtifactID)
}

// metadataURL builds the maven-metadata.xml URL for a coordinate.
func metadataURL(coord identifier.Maven) string {
	groupPath := strings.ReplaceAll(coord.GroupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", coord.Registry, groupPath, coord.ArtifactID)
}
