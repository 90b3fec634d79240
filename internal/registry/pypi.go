package registry

import (
	"context"
	"fmt"
	"net/http"
)

const defaultPyPIRegistry = "https://pypi.org"

// PyPIClient fetches package metadata from PyPI.
type PyPIClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPyPIClient creates a client for pypi.org.
func NewPyPIClient() *PyPIClient {
	return &PyPIClient{
		httpClient: newHTTPClient(DefaultHTTPTimeout),
		baseURL:    defaultPyPIRegistry,
	}
}

// pypiProject is the subset of the PyPI JSON API response we read.
type pypiProject struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]pypiFile `json:"releases"`
}

type pypiFile struct {
	UploadTime string            `json:"upload_time_iso_8601"`
	Digests    map[string]string `json:"digests"`
}

// LatestVersion returns the project's current version. PyPI publishes
// digests per file, not per release; the sha256 of the first file stands in
// for the release digest.
func (c *PyPIClient) LatestVersion(ctx context.Context, name string) (PackageVersion, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, name)

	var project pypiProject
	if err := getJSON(ctx, c.httpClient, url, nil, &project); err != nil {
		return PackageVersion{}, err
	}

	version := project.Info.Version
	if version == "" {
		return PackageVersion{}, fmt.Errorf("pypi project %s reports no version", name)
	}

	result := PackageVersion{Version: version}
	if files := project.Releases[version]; len(files) > 0 {
		result.PublishedOn = files[0].UploadTime
		if sha := files[0].Digests["sha256"]; sha != "" {
			result.Digest = "sha256:" + sha
		}
	}
	return result, nil
}
