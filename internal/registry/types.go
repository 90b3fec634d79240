// Package registry contains the thin HTTP clients that fetch version
// information from package registries: npm, PyPI, Maven repositories, Helm
// chart repositories, Terraform provider registries, GitHub, Docker Hub,
// GHCR and generic Docker V2 registries. The clients build a URL, GET it
// and extract fields; picking the "latest" among raw tags is the version
// package's job.
package registry

import "context"

// PackageVersion is the result of a registry lookup.
type PackageVersion struct {
	// Version is the latest version string as the registry reports it.
	Version string

	// Digest is a content digest when the registry provides one, in
	// "sha256:..." form. Empty otherwise.
	Digest string

	// PublishedOn is the publication timestamp as reported by the
	// registry, verbatim. Empty when unavailable.
	PublishedOn string
}

// TagLister is implemented by Docker registry clients.
type TagLister interface {
	// ListTags returns all available tags for an image repository.
	ListTags(ctx context.Context, repository string) ([]string, error)
}

// Credentials configures access to a generic Docker V2 registry.
type Credentials struct {
	Username string
	Password string
}
