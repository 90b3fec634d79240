package registry

import "time"

const (
	// DefaultHTTPTimeout is the default timeout for registry requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRateLimitInterval spaces out requests to rate-limited APIs.
	DefaultRateLimitInterval = 100 * time.Millisecond

	// maxRetries bounds transient-error retries for a single request.
	maxRetries = 3

	// initialBackoff is the first retry delay; it doubles per attempt.
	initialBackoff = 500 * time.Millisecond

	// httpCacheSize bounds the in-process HTTP response cache.
	httpCacheSize = 64 * 1024 * 1024 // 64MB

	// httpCacheMaxAge bounds how long cached HTTP responses live.
	httpCacheMaxAge = time.Hour
)
