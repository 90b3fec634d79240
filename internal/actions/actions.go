// Package actions looks up GitHub Actions: their latest release tag, the
// action.yml interface (inputs, outputs, runs) and optionally the README.
package actions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkgsmith/pkgsmith/internal/registry"
	"github.com/pkgsmith/pkgsmith/internal/version"
)

const defaultRawContentURL = "https://raw.githubusercontent.com"

// Metadata is the interface portion of an action.yml file.
type Metadata struct {
	Inputs  map[string]any `json:"inputs,omitempty" yaml:"inputs"`
	Outputs map[string]any `json:"outputs,omitempty" yaml:"outputs"`
	Runs    map[string]any `json:"runs,omitempty" yaml:"runs"`
}

// ActionResult is a successful action lookup.
type ActionResult struct {
	Name      string   `json:"name"`
	LatestTag string   `json:"latest_version"`
	Metadata  Metadata `json:"metadata"`
	Readme    string   `json:"readme,omitempty"`
}

// ActionError is a failed action lookup.
type ActionError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Response groups successes and failures of a batch action lookup.
type Response struct {
	Result       []ActionResult `json:"result"`
	LookupErrors []ActionError  `json:"lookup_errors"`
}

// TagSource lists repository tags, newest first.
type TagSource interface {
	ListTags(ctx context.Context, owner, repo string) ([]string, error)
}

// Fetcher looks up GitHub Actions.
type Fetcher struct {
	tags       TagSource
	resolver   *version.Resolver
	httpClient *http.Client
	rawURL     string
}

// NewFetcher creates an action fetcher on top of a GitHub tag source.
func NewFetcher(tags TagSource) *Fetcher {
	return &Fetcher{
		tags:       tags,
		resolver:   version.NewResolver(),
		httpClient: &http.Client{Timeout: registry.DefaultHTTPTimeout},
		rawURL:     defaultRawContentURL,
	}
}

// Fetch looks up one action named "owner/repo". Lookup failures come back
// as a value, not an error, so one bad action does not fail a batch.
func (f *Fetcher) Fetch(ctx context.Context, name string, includeReadme bool) (ActionResult, *ActionError) {
	owner, repo, ok := splitActionName(name)
	if !ok {
		return ActionResult{}, &ActionError{
			Name:  name,
			Error: fmt.Sprintf("invalid action name %q: expected owner/repo", name),
		}
	}

	tag, err := f.latestTag(ctx, owner, repo)
	if err != nil {
		if registry.IsNotFound(err) {
			return ActionResult{}, &ActionError{
				Name:  name,
				Error: fmt.Sprintf("action %q not found on GitHub", name),
			}
		}
		return ActionResult{}, &ActionError{
			Name:  name,
			Error: fmt.Sprintf("failed to fetch action tags: %v", err),
		}
	}

	metadata, err := f.fetchMetadata(ctx, owner, repo, tag)
	if err != nil {
		return ActionResult{}, &ActionError{
			Name:  name,
			Error: fmt.Sprintf("failed to fetch action metadata: %v", err),
		}
	}

	result := ActionResult{Name: name, LatestTag: tag, Metadata: metadata}
	if includeReadme {
		readme, err := f.fetchReadme(ctx, owner, repo, tag)
		if err != nil {
			return ActionResult{}, &ActionError{
				Name:  name,
				Error: fmt.Sprintf("failed to fetch README: %v", err),
			}
		}
		result.Readme = readme
	}
	return result, nil
}

// latestTag picks the repository's latest release tag. Tags that resolution
// cannot rank, such as pinned commit hashes, fall back to GitHub's own
// newest-first ordering.
func (f *Fetcher) latestTag(ctx context.Context, owner, repo string) (string, error) {
	tags, err := f.tags.ListTags(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("no tags found for %s/%s", owner, repo)
	}
	if resolved, ok := f.resolver.Resolve(tags, ""); ok {
		return resolved, nil
	}
	return tags[0], nil
}

// fetchMetadata downloads action.yml (or action.yaml) at the given tag and
// keeps the inputs, outputs and runs sections.
func (f *Fetcher) fetchMetadata(ctx context.Context, owner, repo, tag string) (Metadata, error) {
	var lastErr error
	for _, filename := range []string{"action.yml", "action.yaml"} {
		url := fmt.Sprintf("%s/%s/%s/%s/%s", f.rawURL, owner, repo, tag, filename)

		body, err := f.getRaw(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		var metadata Metadata
		if err := yaml.Unmarshal(body, &metadata); err != nil {
			return Metadata{}, fmt.Errorf("failed to parse %s for %s/%s@%s: %w", filename, owner, repo, tag, err)
		}
		return metadata, nil
	}
	return Metadata{}, fmt.Errorf("no action.yml or action.yaml found for %s/%s@%s: %w", owner, repo, tag, lastErr)
}

// fetchReadme downloads README.md at the given tag. A missing README is not
// an error.
func (f *Fetcher) fetchReadme(ctx context.Context, owner, repo, tag string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/README.md", f.rawURL, owner, repo, tag)

	body, err := f.getRaw(ctx, url)
	if err != nil {
		if registry.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(body), nil
}

func (f *Fetcher) getRaw(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &registry.StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

func splitActionName(name string) (owner, repo string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
