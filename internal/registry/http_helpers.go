package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/die-net/lrucache"
	"github.com/gregjones/httpcache"
)

// StatusError reports a non-2xx response from a registry API.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: registry returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a registry 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// newHTTPClient builds the shared registry HTTP client: an RFC 7234 caching
// transport over an LRU store, so repeated lookups for popular packages do
// not hammer the registries.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	transport := httpcache.NewTransport(
		lrucache.New(httpCacheSize, int64(httpCacheMaxAge/time.Second)),
	)
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// doWithRetry executes a request with exponential backoff on transport
// errors and 5xx responses. Safe for GETs only; the request carries no body.
func doWithRetry(client *http.Client, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Body: string(body)}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// doGET performs a GET with the given headers and returns the response body
// for 2xx responses. Transient failures are retried with backoff; non-2xx
// responses become a *StatusError with a body excerpt.
func doGET(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := doWithRetry(client, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

// getJSON performs a GET and decodes the JSON response into v.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, v any) error {
	body, err := doGET(ctx, client, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
