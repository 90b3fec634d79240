package registry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Manager routes Docker image references to the right registry client, with
// a shared TTL cache and per-host circuit breaker in front.
type Manager struct {
	dockerHub *DockerHubClient
	ghcr      *GHCRClient
	generic   func(host string) TagLister

	cache   *Cache
	breaker *CircuitBreaker
}

// NewManager creates a registry manager. githubToken is optional and used
// for GHCR authentication.
func NewManager(githubToken string, cacheTTL time.Duration) *Manager {
	return &Manager{
		dockerHub: NewDockerHubClient(),
		ghcr:      NewGHCRClient(githubToken),
		generic: func(host string) TagLister {
			return NewGenericClient(host, Credentials{})
		},
		cache:   NewCache(cacheTTL),
		breaker: NewCircuitBreaker(),
	}
}

// ListTags returns all available tags for an image reference such as
// "nginx", "linuxserver/plex", "ghcr.io/linuxserver/plex" or
// "registry.example.com/team/app".
func (m *Manager) ListTags(ctx context.Context, imageRef string) ([]string, error) {
	cacheKey := "tags:" + imageRef
	if cached, found := m.cache.Get(cacheKey); found {
		if tags, ok := cached.([]string); ok {
			return tags, nil
		}
	}

	host, repository := ParseImageRef(imageRef)
	if !m.breaker.Allow(host) {
		return nil, fmt.Errorf("%s: %w", host, ErrCircuitOpen)
	}

	tags, err := m.client(host).ListTags(ctx, repository)
	if err != nil {
		m.breaker.RecordFailure(host)
		return nil, err
	}
	m.breaker.RecordSuccess(host)

	if len(tags) > 0 {
		m.cache.Set(cacheKey, tags)
	}
	return tags, nil
}

// TagDigest returns the digest for one tag, where the registry supports it.
func (m *Manager) TagDigest(ctx context.Context, imageRef, tag string) (string, error) {
	host, repository := ParseImageRef(imageRef)
	if host != "docker.io" {
		return "", nil
	}
	return m.dockerHub.TagDigest(ctx, repository, tag)
}

// ClearCache drops all cached tag lists.
func (m *Manager) ClearCache() {
	m.cache.Clear()
}

// CleanupCache removes expired tag lists without touching live entries.
func (m *Manager) CleanupCache() {
	m.cache.Cleanup()
}

func (m *Manager) client(host string) TagLister {
	switch host {
	case "docker.io":
		return m.dockerHub
	case "ghcr.io":
		return m.ghcr
	default:
		return m.generic(host)
	}
}

// ParseImageRef splits an image reference into registry host and
// repository, applying Docker Hub conventions: no host means docker.io,
// and single-segment Hub repositories are official images under "library/".
func ParseImageRef(imageRef string) (host, repository string) {
	parts := strings.SplitN(imageRef, "/", 2)

	// A first segment with a dot or colon (or "localhost") is a host.
	if len(parts) == 2 && (strings.ContainsAny(parts[0], ".:") || parts[0] == "localhost") {
		return parts[0], parts[1]
	}

	if !strings.Contains(imageRef, "/") {
		return "docker.io", "library/" + imageRef
	}
	return "docker.io", imageRef
}
