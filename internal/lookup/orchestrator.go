package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pkgsmith/pkgsmith/internal/events"
	"github.com/pkgsmith/pkgsmith/internal/identifier"
	"github.com/pkgsmith/pkgsmith/internal/logging"
	"github.com/pkgsmith/pkgsmith/internal/registry"
	"github.com/pkgsmith/pkgsmith/internal/storage"
	"github.com/pkgsmith/pkgsmith/internal/version"
)

// defaultConcurrency bounds how many lookups of one batch run at once.
const defaultConcurrency = 8

// defaultMaintenanceInterval is how often expired cache entries are swept.
const defaultMaintenanceInterval = 5 * time.Minute

// cacheRetentionDays is how long resolved versions stay in the persistent
// cache before the sweep removes them.
const cacheRetentionDays = 7

// npmSource resolves npm packages.
type npmSource interface {
	LatestVersion(ctx context.Context, name string) (registry.PackageVersion, error)
}

// mavenSource resolves Maven coordinates.
type mavenSource interface {
	LatestVersion(ctx context.Context, coord identifier.Maven, hint string) (registry.PackageVersion, error)
}

// helmSource resolves Helm chart URLs.
type helmSource interface {
	LatestVersion(ctx context.Context, chartURL, hint string) (registry.PackageVersion, error)
}

// terraformSource resolves Terraform providers.
type terraformSource interface {
	LatestVersion(ctx context.Context, provider identifier.TerraformProvider, hint string) (registry.PackageVersion, error)
}

// repoTagSource lists GitHub repository tags.
type repoTagSource interface {
	ListTags(ctx context.Context, owner, repo string) ([]string, error)
}

// imageSource lists Docker image tags and digests.
type imageSource interface {
	ListTags(ctx context.Context, imageRef string) ([]string, error)
	TagDigest(ctx context.Context, imageRef, tag string) (string, error)
}

// cacheCleaner sweeps expired entries from an in-memory cache.
type cacheCleaner interface {
	CleanupCache()
}

// Orchestrator fans a batch of lookup requests out to the ecosystem
// clients, bounded by a concurrency limit, with identical in-flight lookups
// deduplicated.
type Orchestrator struct {
	npm       npmSource
	pypi      npmSource
	maven     mavenSource
	helm      helmSource
	terraform terraformSource
	github    repoTagSource
	docker    imageSource

	resolver    *version.Resolver
	store       storage.Storage
	bus         *events.Bus
	logger      *logging.Logger
	group       singleflight.Group
	concurrency int

	cleaner  cacheCleaner
	stopChan chan struct{}
}

// Options carries the optional collaborators of an Orchestrator.
type Options struct {
	// Store persists lookup results and history. Nil disables persistence.
	Store storage.Storage

	// Bus receives lookup lifecycle events. Nil disables publishing.
	Bus *events.Bus

	// Concurrency bounds parallel lookups per batch. 0 uses the default.
	Concurrency int

	// CacheTTL bounds how long registry tag lists are reused. 0 uses the
	// registry default.
	CacheTTL time.Duration
}

// NewOrchestrator creates an orchestrator with live registry clients.
// githubToken is optional.
func NewOrchestrator(githubToken string, opts Options) *Orchestrator {
	resolver := version.NewResolver()
	return newOrchestrator(
		registry.NewNPMClient(),
		registry.NewPyPIClient(),
		registry.NewMavenClient(resolver),
		registry.NewHelmClient(resolver),
		registry.NewTerraformClient(resolver),
		registry.NewGitHubClient(githubToken),
		registry.NewManager(githubToken, opts.CacheTTL),
		resolver,
		opts,
	)
}

func newOrchestrator(npm, pypi npmSource, maven mavenSource, helm helmSource,
	terraform terraformSource, github repoTagSource, docker imageSource,
	resolver *version.Resolver, opts Options) *Orchestrator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	o := &Orchestrator{
		npm:         npm,
		pypi:        pypi,
		maven:       maven,
		helm:        helm,
		terraform:   terraform,
		github:      github,
		docker:      docker,
		resolver:    resolver,
		store:       opts.Store,
		bus:         opts.Bus,
		logger:      logging.Default(),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
	if cleaner, ok := docker.(cacheCleaner); ok {
		o.cleaner = cleaner
	}
	return o
}

// outcome is the per-request result slot. Exactly one field is set.
type outcome struct {
	result *Result
	err    *LookupError
}

// GetLatestVersions resolves a batch of requests. One failed lookup never
// fails the batch; it lands in LookupErrors instead. Successes and failures
// each keep the order their requests arrived in.
func (o *Orchestrator) GetLatestVersions(ctx context.Context, requests []Request) Response {
	outcomes := make([]outcome, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, req := range requests {
		g.Go(func() error {
			outcomes[i] = o.lookupOne(gctx, req)
			return nil
		})
	}
	g.Wait()

	response := Response{
		Result:       []Result{},
		LookupErrors: []LookupError{},
	}
	for _, out := range outcomes {
		if out.result != nil {
			response.Result = append(response.Result, *out.result)
		} else if out.err != nil {
			response.LookupErrors = append(response.LookupErrors, *out.err)
		}
	}
	return response
}

// lookupOne resolves a single request, consulting the cache first and
// collapsing identical concurrent lookups into one registry call.
func (o *Orchestrator) lookupOne(ctx context.Context, req Request) outcome {
	if !req.Ecosystem.Valid() {
		return failure(req, fmt.Sprintf("unsupported ecosystem %q", req.Ecosystem))
	}
	if req.PackageName == "" {
		return failure(req, "package_name must not be empty")
	}

	o.publish(events.EventLookupStarted, req, "")

	if o.store != nil {
		entry, found, err := o.store.GetLookupCache(ctx, string(req.Ecosystem), req.PackageName, req.Version)
		if err != nil {
			o.logger.WarnContext(ctx, "lookup cache read failed: %v", err)
		} else if found {
			result := Result{
				Ecosystem:     req.Ecosystem,
				PackageName:   req.PackageName,
				LatestVersion: entry.Version,
				Digest:        entry.Digest,
				PublishedOn:   entry.PublishedOn,
			}
			o.publish(events.EventLookupCompleted, req, result.LatestVersion)
			return outcome{result: &result}
		}
	}

	key := string(req.Ecosystem) + "\x00" + req.PackageName + "\x00" + req.Version
	v, err, _ := o.group.Do(key, func() (any, error) {
		pkg, err := o.fetch(ctx, req)
		if err != nil {
			return registry.PackageVersion{}, err
		}
		return pkg, nil
	})
	if err != nil {
		msg := errorMessage(req, err)
		o.record(ctx, req, registry.PackageVersion{}, err)
		o.publish(events.EventLookupFailed, req, msg)
		return failure(req, msg)
	}

	pkg := v.(registry.PackageVersion)
	o.record(ctx, req, pkg, nil)
	o.publish(events.EventLookupCompleted, req, pkg.Version)

	return outcome{result: &Result{
		Ecosystem:     req.Ecosystem,
		PackageName:   req.PackageName,
		LatestVersion: pkg.Version,
		Digest:        pkg.Digest,
		PublishedOn:   pkg.PublishedOn,
	}}
}

// fetch dispatches one request to its ecosystem client.
func (o *Orchestrator) fetch(ctx context.Context, req Request) (registry.PackageVersion, error) {
	switch req.Ecosystem {
	case EcosystemNPM:
		return o.npm.LatestVersion(ctx, req.PackageName)
	case EcosystemPyPI:
		return o.pypi.LatestVersion(ctx, req.PackageName)
	case EcosystemMaven:
		coord, err := identifier.ParseMaven(req.PackageName)
		if err != nil {
			return registry.PackageVersion{}, err
		}
		return o.maven.LatestVersion(ctx, coord, req.Version)
	case EcosystemHelm:
		return o.helm.LatestVersion(ctx, req.PackageName, req.Version)
	case EcosystemTerraform:
		provider, err := identifier.ParseTerraformProvider(req.PackageName)
		if err != nil {
			return registry.PackageVersion{}, err
		}
		return o.terraform.LatestVersion(ctx, provider, req.Version)
	case EcosystemGitHub:
		return o.fetchGitHub(ctx, req)
	case EcosystemDocker:
		return o.fetchDocker(ctx, req)
	default:
		return registry.PackageVersion{}, fmt.Errorf("unsupported ecosystem %q", req.Ecosystem)
	}
}

// fetchGitHub resolves the latest release tag of an "owner/repo".
func (o *Orchestrator) fetchGitHub(ctx context.Context, req Request) (registry.PackageVersion, error) {
	owner, repo, err := splitRepo(req.PackageName)
	if err != nil {
		return registry.PackageVersion{}, err
	}

	tags, err := o.github.ListTags(ctx, owner, repo)
	if err != nil {
		return registry.PackageVersion{}, err
	}

	resolved, ok := o.resolver.Resolve(tags, req.Version)
	if !ok {
		return registry.PackageVersion{}, fmt.Errorf("no resolvable release tags for %s", req.PackageName)
	}
	return registry.PackageVersion{Version: resolved}, nil
}

// fetchDocker resolves the latest tag of an image reference, with the
// manifest digest where the registry reports one.
func (o *Orchestrator) fetchDocker(ctx context.Context, req Request) (registry.PackageVersion, error) {
	tags, err := o.docker.ListTags(ctx, req.PackageName)
	if err != nil {
		return registry.PackageVersion{}, err
	}

	resolved, ok := o.resolver.Resolve(tags, req.Version)
	if !ok {
		return registry.PackageVersion{}, fmt.Errorf("no resolvable tags for image %s", req.PackageName)
	}

	pkg := registry.PackageVersion{Version: resolved}
	if digest, err := o.docker.TagDigest(ctx, req.PackageName, resolved); err == nil {
		pkg.Digest = digest
	}
	return pkg, nil
}

// record persists the lookup in cache and history, when storage is wired.
func (o *Orchestrator) record(ctx context.Context, req Request, pkg registry.PackageVersion, lookupErr error) {
	if o.store == nil {
		return
	}

	status := storage.LookupStatusResolved
	if lookupErr != nil {
		status = storage.LookupStatusFailed
		if registry.IsNotFound(lookupErr) {
			status = storage.LookupStatusNotFound
		}
	} else {
		err := o.store.SaveLookupCache(ctx, string(req.Ecosystem), req.PackageName, req.Version,
			pkg.Version, pkg.Digest, pkg.PublishedOn)
		if err != nil {
			o.logger.WarnContext(ctx, "lookup cache write failed: %v", err)
		}
	}

	err := o.store.LogLookup(ctx, string(req.Ecosystem), req.PackageName, req.Version, pkg.Version, status, lookupErr)
	if err != nil {
		o.logger.WarnContext(ctx, "lookup history write failed: %v", err)
	}
}

// publish emits a lookup lifecycle event, when the bus is wired.
func (o *Orchestrator) publish(eventType string, req Request, detail string) {
	if o.bus == nil {
		return
	}

	payload := map[string]any{
		"ecosystem":    string(req.Ecosystem),
		"package_name": req.PackageName,
	}
	switch eventType {
	case events.EventLookupCompleted:
		payload["latest_version"] = detail
	case events.EventLookupFailed:
		payload["error"] = detail
	}
	o.bus.Publish(events.Event{Type: eventType, Payload: payload})
}

// History returns the recorded lookups for one package, most recent first.
// Without persistence the history is empty.
func (o *Orchestrator) History(ctx context.Context, ecosystem Ecosystem, packageName string, limit int) ([]storage.LookupHistoryEntry, error) {
	if o.store == nil {
		return []storage.LookupHistoryEntry{}, nil
	}
	return o.store.GetLookupHistory(ctx, string(ecosystem), packageName, limit)
}

// HistorySince returns all recorded lookups since a time, most recent
// first. Without persistence the history is empty.
func (o *Orchestrator) HistorySince(ctx context.Context, since time.Time) ([]storage.LookupHistoryEntry, error) {
	if o.store == nil {
		return []storage.LookupHistoryEntry{}, nil
	}
	return o.store.GetLookupHistorySince(ctx, since)
}

// StartMaintenance begins periodic cache sweeping. Stop ends it.
func (o *Orchestrator) StartMaintenance(interval time.Duration) {
	if interval <= 0 {
		interval = defaultMaintenanceInterval
	}
	go o.maintenanceLoop(interval)
}

// Stop stops the maintenance goroutine.
func (o *Orchestrator) Stop() {
	close(o.stopChan)
}

func (o *Orchestrator) maintenanceLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopChan:
			return
		case <-ticker.C:
			o.runMaintenance(context.Background())
		}
	}
}

// runMaintenance sweeps expired entries from the in-memory tag cache and
// the persistent lookup cache.
func (o *Orchestrator) runMaintenance(ctx context.Context) {
	if o.cleaner != nil {
		o.cleaner.CleanupCache()
	}
	if o.store == nil {
		return
	}

	removed, err := o.store.CleanExpiredCache(ctx, cacheRetentionDays)
	if err != nil {
		o.logger.WarnContext(ctx, "lookup cache sweep failed: %v", err)
		return
	}
	if removed > 0 {
		o.logger.DebugContext(ctx, "lookup cache sweep removed %d entries", removed)
	}
}

func failure(req Request, msg string) outcome {
	return outcome{err: &LookupError{
		Ecosystem:   req.Ecosystem,
		PackageName: req.PackageName,
		Error:       msg,
	}}
}

// errorMessage maps registry errors to user-facing messages.
func errorMessage(req Request, err error) string {
	if registry.IsNotFound(err) {
		return fmt.Sprintf("Package %q not found", req.PackageName)
	}
	return fmt.Sprintf("Failed to fetch package version: %v", err)
}

func splitRepo(name string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(name, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", name)
	}
	return owner, repo, nil
}
