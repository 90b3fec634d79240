package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveLookupCache implements Storage.SaveLookupCache using INSERT OR
// REPLACE, refreshing resolved_at.
func (s *SQLiteStorage) SaveLookupCache(ctx context.Context, ecosystem, packageName, hint, version, digest, publishedOn string) error {
	return s.retryWithBackoff(ctx, func() error {
		query := `
			INSERT OR REPLACE INTO lookup_cache
			(ecosystem, package_name, hint, resolved_version, digest, published_on, resolved_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`

		_, err := s.db.ExecContext(ctx, query, ecosystem, packageName, hint, version, digest, publishedOn)
		if err != nil {
			return fmt.Errorf("failed to save lookup cache: %w", err)
		}
		return nil
	})
}

// GetLookupCache implements Storage.GetLookupCache. Entries older than the
// configured TTL are treated as misses.
func (s *SQLiteStorage) GetLookupCache(ctx context.Context, ecosystem, packageName, hint string) (LookupCacheEntry, bool, error) {
	query := `
		SELECT resolved_version, digest, published_on, resolved_at
		FROM lookup_cache
		WHERE ecosystem = ? AND package_name = ? AND hint = ?
	`

	entry := LookupCacheEntry{
		Ecosystem:   ecosystem,
		PackageName: packageName,
		Hint:        hint,
	}
	err := s.db.QueryRowContext(ctx, query, ecosystem, packageName, hint).
		Scan(&entry.Version, &entry.Digest, &entry.PublishedOn, &entry.ResolvedAt)
	if err == sql.ErrNoRows {
		return LookupCacheEntry{}, false, nil
	}
	if err != nil {
		return LookupCacheEntry{}, false, fmt.Errorf("failed to query lookup cache: %w", err)
	}

	if entry.ResolvedAt.Before(time.Now().Add(-s.ttl)) {
		return LookupCacheEntry{}, false, nil
	}
	return entry, true, nil
}

// CleanExpiredCache removes cache entries older than the TTL in days.
func (s *SQLiteStorage) CleanExpiredCache(ctx context.Context, ttlDays int) (int, error) {
	var rowsDeleted int

	err := s.retryWithBackoff(ctx, func() error {
		query := `
			DELETE FROM lookup_cache
			WHERE resolved_at < datetime('now', '-' || ? || ' days')
		`

		result, err := s.db.ExecContext(ctx, query, ttlDays)
		if err != nil {
			return fmt.Errorf("failed to clean expired cache: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		rowsDeleted = int(affected)
		return nil
	})

	return rowsDeleted, err
}
