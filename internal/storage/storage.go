package storage

import (
	"context"
	"time"
)

// Storage defines the interface for persistent storage operations.
// Implementations must handle graceful degradation when operations fail.
type Storage interface {
	// SaveLookupCache stores a resolved version for an ecosystem/package
	// pair. hint distinguishes compatibility-constrained lookups.
	SaveLookupCache(ctx context.Context, ecosystem, packageName, hint, version, digest, publishedOn string) error

	// GetLookupCache retrieves a cached resolution.
	// found is false when no valid, non-expired entry exists.
	GetLookupCache(ctx context.Context, ecosystem, packageName, hint string) (entry LookupCacheEntry, found bool, err error)

	// CleanExpiredCache removes cache entries older than the TTL in days.
	// Returns the number of rows deleted.
	CleanExpiredCache(ctx context.Context, ttlDays int) (int, error)

	// LogLookup records one lookup in the history.
	LogLookup(ctx context.Context, ecosystem, packageName, hint, resolvedVersion, status string, lookupErr error) error

	// GetLookupHistory retrieves history for one package, most recent
	// first. limit of 0 means no limit.
	GetLookupHistory(ctx context.Context, ecosystem, packageName string, limit int) ([]LookupHistoryEntry, error)

	// GetLookupHistorySince retrieves all history since a time, most
	// recent first.
	GetLookupHistorySince(ctx context.Context, since time.Time) ([]LookupHistoryEntry, error)

	// Close releases the underlying database.
	Close() error
}

// LookupCacheEntry is one cached resolution.
type LookupCacheEntry struct {
	Ecosystem   string
	PackageName string
	Hint        string
	Version     string
	Digest      string
	PublishedOn string
	ResolvedAt  time.Time
}

// LookupHistoryEntry is one recorded lookup.
type LookupHistoryEntry struct {
	ID              int64     `json:"id"`
	Ecosystem       string    `json:"ecosystem"`
	PackageName     string    `json:"package_name"`
	Hint            string    `json:"hint,omitempty"`
	ResolvedVersion string    `json:"resolved_version,omitempty"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	LookupTime      time.Time `json:"lookup_time"`
}

// Lookup status constants.
const (
	LookupStatusResolved = "resolved"
	LookupStatusNotFound = "not_found"
	LookupStatusFailed   = "failed"
)
