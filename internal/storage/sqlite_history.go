package storage

import (
	"context"
	"fmt"
	"time"
)

// LogLookup implements Storage.LogLookup. The history table is append-only.
func (s *SQLiteStorage) LogLookup(ctx context.Context, ecosystem, packageName, hint, resolvedVersion, status string, lookupErr error) error {
	errMsg := ""
	if lookupErr != nil {
		errMsg = lookupErr.Error()
	}

	return s.retryWithBackoff(ctx, func() error {
		query := `
			INSERT INTO lookup_history
			(ecosystem, package_name, hint, resolved_version, status, error, lookup_time)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`

		_, err := s.db.ExecContext(ctx, query, ecosystem, packageName, hint, resolvedVersion, status, errMsg)
		if err != nil {
			return fmt.Errorf("failed to log lookup: %w", err)
		}
		return nil
	})
}

// GetLookupHistory implements Storage.GetLookupHistory.
func (s *SQLiteStorage) GetLookupHistory(ctx context.Context, ecosystem, packageName string, limit int) ([]LookupHistoryEntry, error) {
	query := `
		SELECT id, ecosystem, package_name, hint, resolved_version, status, error, lookup_time
		FROM lookup_history
		WHERE ecosystem = ? AND package_name = ?
		ORDER BY lookup_time DESC, id DESC
	`
	args := []any{ecosystem, packageName}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryHistory(ctx, query, args...)
}

// GetLookupHistorySince implements Storage.GetLookupHistorySince.
func (s *SQLiteStorage) GetLookupHistorySince(ctx context.Context, since time.Time) ([]LookupHistoryEntry, error) {
	query := `
		SELECT id, ecosystem, package_name, hint, resolved_version, status, error, lookup_time
		FROM lookup_history
		WHERE lookup_time >= ?
		ORDER BY lookup_time DESC, id DESC
	`
	return s.queryHistory(ctx, query, since)
}

func (s *SQLiteStorage) queryHistory(ctx context.Context, query string, args ...any) ([]LookupHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup history: %w", err)
	}
	defer rows.Close()

	var entries []LookupHistoryEntry
	for rows.Next() {
		var entry LookupHistoryEntry
		err := rows.Scan(&entry.ID, &entry.Ecosystem, &entry.PackageName, &entry.Hint,
			&entry.ResolvedVersion, &entry.Status, &entry.Error, &entry.LookupTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lookup history row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lookup history: %w", err)
	}
	return entries, nil
}
